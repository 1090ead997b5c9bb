package dynamodbengine

import (
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/jonboulle/clockwork"

	"awslite/internal/protocol"
)

const (
	ServicePrefix = "DynamoDB_20120810"
	ContentType   = "application/x-amz-json-1.0"
)

// NewServer returns a new DynamoDB AWS-JSON server backed by the given clock.
func NewServer(clock clockwork.Clock) *Server {
	s := &Server{clock: clock, registry: NewRegistry()}
	s.dispatcher = protocol.NewJSONDispatcher(ServicePrefix, ContentType)
	s.registerRoutes()
	return s
}

// Server implements the DynamoDB AWS-JSON HTTP front-end.
type Server struct {
	clock      clockwork.Clock
	registry   *Registry
	dispatcher *protocol.JSONDispatcher
}

var _ http.Handler = (*Server)(nil)

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	s.dispatcher.ServeHTTP(rw, req)
}

// Registry returns the underlying table store, used by the admin surface.
func (s *Server) Registry() *Registry {
	return s.registry
}

func (s *Server) registerRoutes() {
	s.dispatcher.Handle("CreateTable", s.createTable)
	s.dispatcher.Handle("DeleteTable", s.deleteTable)
	s.dispatcher.Handle("DescribeTable", s.describeTable)
	s.dispatcher.Handle("UpdateTable", s.updateTable)
	s.dispatcher.Handle("ListTables", s.listTables)
	s.dispatcher.Handle("PutItem", s.putItem)
	s.dispatcher.Handle("GetItem", s.getItem)
	s.dispatcher.Handle("DeleteItem", s.deleteItem)
	s.dispatcher.Handle("UpdateItem", s.updateItem)
	s.dispatcher.Handle("Query", s.query)
	s.dispatcher.Handle("Scan", s.scan)
	s.dispatcher.Handle("BatchGetItem", s.batchGetItem)
	s.dispatcher.Handle("BatchWriteItem", s.batchWriteItem)
	s.dispatcher.Handle("TagResource", s.tagResource)
	s.dispatcher.Handle("UntagResource", s.untagResource)
	s.dispatcher.Handle("ListTagsOfResource", s.listTagsOfResource)
}

func (s *Server) createTable(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[dynamodb.CreateTableInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	if input.TableName == nil || *input.TableName == "" {
		protocol.WriteJSONError(rw, ContentType, ErrorValidation("TableName is required"))
		return
	}
	billingMode := types.BillingModeProvisioned
	if input.BillingMode != "" {
		billingMode = input.BillingMode
	}
	table, jerr := s.registry.CreateTable(s.clock.Now(), *input.TableName, input.KeySchema, input.AttributeDefinitions, billingMode, input.ProvisionedThroughput, nil)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &dynamodb.CreateTableOutput{
		TableDescription: describeTable(table),
	})
}

func describeTable(t *Table) *types.TableDescription {
	desc := &types.TableDescription{
		TableName:             aws.String(t.Name),
		TableId:               aws.String(t.TableID),
		TableStatus:           t.Status,
		CreationDateTime:      aws.Time(t.Created),
		ItemCount:             aws.Int64(int64(t.ItemCount())),
		BillingModeSummary:    &types.BillingModeSummary{BillingMode: t.BillingMode},
		ProvisionedThroughput: t.ProvisionedThroughput,
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(t.HashKey), KeyType: types.KeyTypeHash},
		},
	}
	if t.RangeKey != "" {
		desc.KeySchema = append(desc.KeySchema, types.KeySchemaElement{
			AttributeName: aws.String(t.RangeKey),
			KeyType:       types.KeyTypeRange,
		})
	}
	return desc
}

func (s *Server) deleteTable(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[dynamodb.DeleteTableInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	table, ok := s.registry.DeleteTable(aws.ToString(input.TableName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound())
		return
	}
	table.Status = types.TableStatusDeleting
	protocol.WriteJSONResult(rw, ContentType, &dynamodb.DeleteTableOutput{TableDescription: describeTable(table)})
}

func (s *Server) describeTable(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[dynamodb.DescribeTableInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	table, ok := s.registry.GetTable(aws.ToString(input.TableName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound())
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &dynamodb.DescribeTableOutput{Table: describeTable(table)})
}

func (s *Server) updateTable(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[dynamodb.UpdateTableInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	table, ok := s.registry.GetTable(aws.ToString(input.TableName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound())
		return
	}
	if input.ProvisionedThroughput != nil {
		table.ProvisionedThroughput = &types.ProvisionedThroughputDescription{
			ReadCapacityUnits:  input.ProvisionedThroughput.ReadCapacityUnits,
			WriteCapacityUnits: input.ProvisionedThroughput.WriteCapacityUnits,
		}
	}
	protocol.WriteJSONResult(rw, ContentType, &dynamodb.UpdateTableOutput{TableDescription: describeTable(table)})
}

func (s *Server) listTables(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[dynamodb.ListTablesInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	limit := 0
	if input.Limit != nil {
		limit = int(*input.Limit)
	}
	names, lastEvaluated := s.registry.ListTables(aws.ToString(input.ExclusiveStartTableName), limit)
	output := &dynamodb.ListTablesOutput{TableNames: names}
	if lastEvaluated != "" {
		output.LastEvaluatedTableName = aws.String(lastEvaluated)
	}
	protocol.WriteJSONResult(rw, ContentType, output)
}

func (s *Server) putItem(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[dynamodb.PutItemInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	table, ok := s.registry.GetTable(aws.ToString(input.TableName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound())
		return
	}
	previous, ok := table.PutItem(input.Item)
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorValidation("item is missing the table's key attribute(s)"))
		return
	}
	output := &dynamodb.PutItemOutput{}
	if input.ReturnValues == types.ReturnValueAllOld && previous != nil {
		output.Attributes = previous
	}
	protocol.WriteJSONResult(rw, ContentType, output)
}

func (s *Server) getItem(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[dynamodb.GetItemInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	table, ok := s.registry.GetTable(aws.ToString(input.TableName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound())
		return
	}
	item, _ := table.GetItem(input.Key)
	protocol.WriteJSONResult(rw, ContentType, &dynamodb.GetItemOutput{Item: item})
}

func (s *Server) deleteItem(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[dynamodb.DeleteItemInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	table, ok := s.registry.GetTable(aws.ToString(input.TableName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound())
		return
	}
	previous := table.DeleteItem(input.Key)
	output := &dynamodb.DeleteItemOutput{}
	if input.ReturnValues == types.ReturnValueAllOld && previous != nil {
		output.Attributes = previous
	}
	protocol.WriteJSONResult(rw, ContentType, output)
}

func (s *Server) updateItem(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[dynamodb.UpdateItemInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	table, ok := s.registry.GetTable(aws.ToString(input.TableName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound())
		return
	}
	item, existed := table.GetItem(input.Key)
	if !existed {
		item = make(map[string]types.AttributeValue)
		for k, v := range input.Key {
			item[k] = v
		}
	}
	previous := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		previous[k] = v
	}
	if input.UpdateExpression != nil {
		applyUpdateExpression(item, *input.UpdateExpression, input.ExpressionAttributeValues)
	}
	table.PutItem(item)

	output := &dynamodb.UpdateItemOutput{}
	switch input.ReturnValues {
	case types.ReturnValueAllOld:
		output.Attributes = previous
	case types.ReturnValueAllNew:
		output.Attributes = item
	}
	protocol.WriteJSONResult(rw, ContentType, output)
}

func (s *Server) query(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[dynamodb.QueryInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	table, ok := s.registry.GetTable(aws.ToString(input.TableName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound())
		return
	}
	hashValue, ok := input.ExpressionAttributeValues[":hashValue"]
	if !ok {
		for _, v := range input.ExpressionAttributeValues {
			hashValue = v
			break
		}
	}
	items := table.Query(hashValue)
	protocol.WriteJSONResult(rw, ContentType, &dynamodb.QueryOutput{
		Items: items,
		Count: int32(len(items)),
	})
}

func (s *Server) scan(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[dynamodb.ScanInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	table, ok := s.registry.GetTable(aws.ToString(input.TableName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound())
		return
	}
	items := table.Scan()
	protocol.WriteJSONResult(rw, ContentType, &dynamodb.ScanOutput{
		Items: items,
		Count: int32(len(items)),
	})
}

func (s *Server) batchGetItem(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[dynamodb.BatchGetItemInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	responses := make(map[string][]map[string]types.AttributeValue)
	for tableName, keysAndAttrs := range input.RequestItems {
		table, ok := s.registry.GetTable(tableName)
		if !ok {
			continue
		}
		for _, key := range keysAndAttrs.Keys {
			if item, ok := table.GetItem(key); ok {
				responses[tableName] = append(responses[tableName], item)
			}
		}
	}
	protocol.WriteJSONResult(rw, ContentType, &dynamodb.BatchGetItemOutput{Responses: responses})
}

func (s *Server) batchWriteItem(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[dynamodb.BatchWriteItemInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	for tableName, writeRequests := range input.RequestItems {
		table, ok := s.registry.GetTable(tableName)
		if !ok {
			continue
		}
		for _, wr := range writeRequests {
			if wr.PutRequest != nil {
				table.PutItem(wr.PutRequest.Item)
			}
			if wr.DeleteRequest != nil {
				table.DeleteItem(wr.DeleteRequest.Key)
			}
		}
	}
	protocol.WriteJSONResult(rw, ContentType, &dynamodb.BatchWriteItemOutput{})
}

func (s *Server) tagResource(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[dynamodb.TagResourceInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	table := s.tableByARN(aws.ToString(input.ResourceArn))
	if table == nil {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound())
		return
	}
	tags := make(map[string]string, len(input.Tags))
	for _, tag := range input.Tags {
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	table.tag(tags)
	protocol.WriteJSONResult(rw, ContentType, &dynamodb.TagResourceOutput{})
}

func (s *Server) untagResource(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[dynamodb.UntagResourceInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	table := s.tableByARN(aws.ToString(input.ResourceArn))
	if table == nil {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound())
		return
	}
	table.untag(input.TagKeys)
	protocol.WriteJSONResult(rw, ContentType, &dynamodb.UntagResourceOutput{})
}

func (s *Server) listTagsOfResource(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[dynamodb.ListTagsOfResourceInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	table := s.tableByARN(aws.ToString(input.ResourceArn))
	if table == nil {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound())
		return
	}
	var tags []types.Tag
	for k, v := range table.tagsSnapshot() {
		tags = append(tags, types.Tag{Key: aws.String(k), Value: aws.String(v)})
	}
	protocol.WriteJSONResult(rw, ContentType, &dynamodb.ListTagsOfResourceOutput{Tags: tags})
}

// tableByARN resolves a table/<name> style ARN suffix to a table. DynamoDB
// ARNs are table/<name>; we only need the suffix.
func (s *Server) tableByARN(arn string) *Table {
	idx := len(arn) - 1
	for idx >= 0 && arn[idx] != '/' {
		idx--
	}
	name := arn
	if idx >= 0 {
		name = arn[idx+1:]
	}
	table, ok := s.registry.GetTable(name)
	if !ok {
		return nil
	}
	return table
}
