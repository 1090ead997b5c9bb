package secretsmanagerengine

import (
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/jonboulle/clockwork"

	"awslite/internal/protocol"
)

const (
	ServicePrefix = "secretsmanager"
	ContentType   = "application/x-amz-json-1.1"
)

func NewServer(clock clockwork.Clock, region, account string) *Server {
	s := &Server{clock: clock, registry: NewRegistry(region, account)}
	s.dispatcher = protocol.NewJSONDispatcher(ServicePrefix, ContentType)
	s.registerRoutes()
	return s
}

type Server struct {
	clock      clockwork.Clock
	registry   *Registry
	dispatcher *protocol.JSONDispatcher
}

var _ http.Handler = (*Server)(nil)

func (s *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) { s.dispatcher.ServeHTTP(rw, req) }
func (s *Server) Registry() *Registry                                 { return s.registry }

func (s *Server) registerRoutes() {
	s.dispatcher.Handle("CreateSecret", s.createSecret)
	s.dispatcher.Handle("GetSecretValue", s.getSecretValue)
	s.dispatcher.Handle("PutSecretValue", s.putSecretValue)
	s.dispatcher.Handle("UpdateSecret", s.updateSecret)
	s.dispatcher.Handle("DeleteSecret", s.deleteSecret)
	s.dispatcher.Handle("RestoreSecret", s.restoreSecret)
	s.dispatcher.Handle("DescribeSecret", s.describeSecret)
	s.dispatcher.Handle("ListSecrets", s.listSecrets)
	s.dispatcher.Handle("ListSecretVersionIds", s.listSecretVersionIds)
	s.dispatcher.Handle("TagResource", s.tagResource)
	s.dispatcher.Handle("UntagResource", s.untagResource)
}

func stagesOf(v *SecretVersion) []string {
	out := make([]string, 0, len(v.Stages))
	for stage := range v.Stages {
		out = append(out, stage)
	}
	return out
}

func (s *Server) createSecret(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[secretsmanager.CreateSecretInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	name := aws.ToString(input.Name)
	tags := make(map[string]string, len(input.Tags))
	for _, tag := range input.Tags {
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	value := aws.ToString(input.SecretString)
	if value == "" && input.SecretBinary != nil {
		value = string(input.SecretBinary)
	}
	secret, ok := s.registry.CreateSecret(s.clock.Now(), name, aws.ToString(input.Description), aws.ToString(input.KmsKeyId), value, tags)
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorAlreadyExists("secret already exists: "+name))
		return
	}
	v, _ := secret.CurrentVersion()
	protocol.WriteJSONResult(rw, ContentType, &secretsmanager.CreateSecretOutput{
		ARN:       aws.String(secret.ARN),
		Name:      aws.String(secret.Name),
		VersionId: aws.String(v.VersionID),
	})
}

func (s *Server) getSecretValue(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[secretsmanager.GetSecretValueInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	secret, ok := s.registry.GetSecret(aws.ToString(input.SecretId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("secret not found"))
		return
	}
	v, ok := secret.Version(aws.ToString(input.VersionId), aws.ToString(input.VersionStage))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("secret version not found"))
		return
	}
	plaintext, ok := simulatedDecrypt(v.Ciphertext)
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorInvalidRequest("could not decode stored secret"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &secretsmanager.GetSecretValueOutput{
		ARN:           aws.String(secret.ARN),
		Name:          aws.String(secret.Name),
		VersionId:     aws.String(v.VersionID),
		SecretString:  aws.String(plaintext),
		CreatedDate:   aws.Time(v.CreatedDate),
		VersionStages: stagesOf(v),
	})
}

func (s *Server) putSecretValue(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[secretsmanager.PutSecretValueInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	value := aws.ToString(input.SecretString)
	if value == "" && input.SecretBinary != nil {
		value = string(input.SecretBinary)
	}
	secret, v, ok := s.registry.PutSecretValue(s.clock.Now(), aws.ToString(input.SecretId), value, "")
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("secret not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &secretsmanager.PutSecretValueOutput{
		ARN:           aws.String(secret.ARN),
		Name:          aws.String(secret.Name),
		VersionId:     aws.String(v.VersionID),
		VersionStages: stagesOf(v),
	})
}

func (s *Server) updateSecret(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[secretsmanager.UpdateSecretInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	secret, ok := s.registry.UpdateSecret(aws.ToString(input.SecretId), aws.ToString(input.Description), aws.ToString(input.KmsKeyId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("secret not found"))
		return
	}
	if input.SecretString != nil || input.SecretBinary != nil {
		value := aws.ToString(input.SecretString)
		if value == "" && input.SecretBinary != nil {
			value = string(input.SecretBinary)
		}
		s.registry.PutSecretValue(s.clock.Now(), secret.Name, value, secret.KMSKeyID)
	}
	protocol.WriteJSONResult(rw, ContentType, &secretsmanager.UpdateSecretOutput{
		ARN:  aws.String(secret.ARN),
		Name: aws.String(secret.Name),
	})
}

func (s *Server) deleteSecret(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[secretsmanager.DeleteSecretInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	secret, ok := s.registry.DeleteSecret(s.clock.Now(), aws.ToString(input.SecretId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("secret not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &secretsmanager.DeleteSecretOutput{
		ARN:          aws.String(secret.ARN),
		Name:         aws.String(secret.Name),
		DeletionDate: aws.Time(secret.DeletionDate),
	})
}

func (s *Server) restoreSecret(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[secretsmanager.RestoreSecretInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	secret, ok := s.registry.RestoreSecret(aws.ToString(input.SecretId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("secret not found or not scheduled for deletion"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &secretsmanager.RestoreSecretOutput{
		ARN:  aws.String(secret.ARN),
		Name: aws.String(secret.Name),
	})
}

func (s *Server) describeSecret(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[secretsmanager.DescribeSecretInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	secret, ok := s.registry.GetSecret(aws.ToString(input.SecretId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("secret not found"))
		return
	}
	versionStages := make(map[string][]string)
	for _, v := range secret.versionsSorted() {
		versionStages[v.VersionID] = stagesOf(v)
	}
	tags := make([]types.Tag, 0)
	for k, v := range secret.tagsSnapshot() {
		tags = append(tags, types.Tag{Key: aws.String(k), Value: aws.String(v)})
	}
	protocol.WriteJSONResult(rw, ContentType, &secretsmanager.DescribeSecretOutput{
		ARN:               aws.String(secret.ARN),
		Name:              aws.String(secret.Name),
		Description:       aws.String(secret.Description),
		KmsKeyId:          aws.String(secret.KMSKeyID),
		Tags:              tags,
		CreatedDate:       aws.Time(secret.Created),
		VersionIdsToStages: versionStages,
	})
}

func (s *Server) listSecrets(rw http.ResponseWriter, req *http.Request) {
	secrets := s.registry.ListSecrets()
	out := make([]types.SecretListEntry, 0, len(secrets))
	for _, secret := range secrets {
		out = append(out, types.SecretListEntry{
			ARN:         aws.String(secret.ARN),
			Name:        aws.String(secret.Name),
			Description: aws.String(secret.Description),
			KmsKeyId:    aws.String(secret.KMSKeyID),
		})
	}
	protocol.WriteJSONResult(rw, ContentType, &secretsmanager.ListSecretsOutput{SecretList: out})
}

func (s *Server) listSecretVersionIds(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[secretsmanager.ListSecretVersionIdsInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	secret, ok := s.registry.GetSecret(aws.ToString(input.SecretId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("secret not found"))
		return
	}
	out := make([]types.SecretVersionsListEntry, 0)
	for _, v := range secret.versionsSorted() {
		out = append(out, types.SecretVersionsListEntry{
			VersionId:     aws.String(v.VersionID),
			VersionStages: stagesOf(v),
			CreatedDate:   aws.Time(v.CreatedDate),
		})
	}
	protocol.WriteJSONResult(rw, ContentType, &secretsmanager.ListSecretVersionIdsOutput{
		ARN:      aws.String(secret.ARN),
		Name:     aws.String(secret.Name),
		Versions: out,
	})
}

func (s *Server) tagResource(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[secretsmanager.TagResourceInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	secret, ok := s.registry.GetSecret(aws.ToString(input.SecretId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("secret not found"))
		return
	}
	tags := make(map[string]string, len(input.Tags))
	for _, tag := range input.Tags {
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	secret.AddTags(tags)
	protocol.WriteJSONResult(rw, ContentType, &secretsmanager.TagResourceOutput{})
}

func (s *Server) untagResource(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[secretsmanager.UntagResourceInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	secret, ok := s.registry.GetSecret(aws.ToString(input.SecretId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("secret not found"))
		return
	}
	secret.RemoveTags(input.TagKeys)
	protocol.WriteJSONResult(rw, ContentType, &secretsmanager.UntagResourceOutput{})
}
