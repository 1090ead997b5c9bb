package cognitoengine

import (
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/jonboulle/clockwork"

	"awslite/internal/protocol"
)

const (
	ServicePrefix = "AWSCognitoIdentityProviderService"
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
	s.dispatcher.Handle("CreateUserPool", s.createUserPool)
	s.dispatcher.Handle("DescribeUserPool", s.describeUserPool)
	s.dispatcher.Handle("ListUserPools", s.listUserPools)
	s.dispatcher.Handle("DeleteUserPool", s.deleteUserPool)
	s.dispatcher.Handle("CreateUserPoolClient", s.createUserPoolClient)
	s.dispatcher.Handle("DescribeUserPoolClient", s.describeUserPoolClient)
	s.dispatcher.Handle("ListUserPoolClients", s.listUserPoolClients)
	s.dispatcher.Handle("DeleteUserPoolClient", s.deleteUserPoolClient)
	s.dispatcher.Handle("AdminCreateUser", s.adminCreateUser)
	s.dispatcher.Handle("AdminGetUser", s.adminGetUser)
	s.dispatcher.Handle("AdminDeleteUser", s.adminDeleteUser)
	s.dispatcher.Handle("ListUsers", s.listUsers)
	s.dispatcher.Handle("AdminUpdateUserAttributes", s.adminUpdateUserAttributes)
	s.dispatcher.Handle("AdminDisableUser", s.adminDisableUser)
	s.dispatcher.Handle("AdminEnableUser", s.adminEnableUser)
	s.dispatcher.Handle("AdminSetUserPassword", s.adminSetUserPassword)
	s.dispatcher.Handle("AdminInitiateAuth", s.adminInitiateAuth)
}

func userAttributes(attrs map[string]string) []types.AttributeType {
	out := make([]types.AttributeType, 0, len(attrs))
	for k, v := range attrs {
		out = append(out, types.AttributeType{Name: aws.String(k), Value: aws.String(v)})
	}
	return out
}

func userStatus(u *User) types.UserStatusType {
	switch u.Status {
	case "CONFIRMED":
		return types.UserStatusTypeConfirmed
	case "UNCONFIRMED":
		return types.UserStatusTypeUnconfirmed
	default:
		return types.UserStatusTypeForceChangePassword
	}
}

func (s *Server) pool(rw http.ResponseWriter, userPoolID string) (*UserPool, bool) {
	p, ok := s.registry.GetUserPool(userPoolID)
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("user pool not found"))
		return nil, false
	}
	return p, true
}

func (s *Server) createUserPool(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cognitoidentityprovider.CreateUserPoolInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	p := s.registry.CreateUserPool(s.clock.Now(), aws.ToString(input.PoolName))
	protocol.WriteJSONResult(rw, ContentType, &cognitoidentityprovider.CreateUserPoolOutput{
		UserPool: &types.UserPoolType{
			Id:           aws.String(p.ID),
			Arn:          aws.String(p.ARN),
			Name:         aws.String(p.Name),
			CreationDate: aws.Time(p.Created),
		},
	})
}

func (s *Server) describeUserPool(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cognitoidentityprovider.DescribeUserPoolInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	p, ok := s.pool(rw, aws.ToString(input.UserPoolId))
	if !ok {
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &cognitoidentityprovider.DescribeUserPoolOutput{
		UserPool: &types.UserPoolType{
			Id:           aws.String(p.ID),
			Arn:          aws.String(p.ARN),
			Name:         aws.String(p.Name),
			CreationDate: aws.Time(p.Created),
		},
	})
}

func (s *Server) listUserPools(rw http.ResponseWriter, req *http.Request) {
	pools := s.registry.ListUserPools()
	out := make([]types.UserPoolDescriptionType, 0, len(pools))
	for _, p := range pools {
		out = append(out, types.UserPoolDescriptionType{Id: aws.String(p.ID), Name: aws.String(p.Name)})
	}
	protocol.WriteJSONResult(rw, ContentType, &cognitoidentityprovider.ListUserPoolsOutput{UserPools: out})
}

func (s *Server) deleteUserPool(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cognitoidentityprovider.DeleteUserPoolInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	if !s.registry.DeleteUserPool(aws.ToString(input.UserPoolId)) {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("user pool not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &cognitoidentityprovider.DeleteUserPoolOutput{})
}

func (s *Server) createUserPoolClient(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cognitoidentityprovider.CreateUserPoolClientInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	p, ok := s.pool(rw, aws.ToString(input.UserPoolId))
	if !ok {
		return
	}
	client := p.CreateClient(aws.ToString(input.ClientName))
	protocol.WriteJSONResult(rw, ContentType, &cognitoidentityprovider.CreateUserPoolClientOutput{
		UserPoolClient: &types.UserPoolClientType{
			ClientId:     aws.String(client.ID),
			ClientName:   aws.String(client.Name),
			UserPoolId:   aws.String(client.PoolID),
			ClientSecret: aws.String(client.SecretHash),
		},
	})
}

func (s *Server) describeUserPoolClient(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cognitoidentityprovider.DescribeUserPoolClientInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	p, ok := s.pool(rw, aws.ToString(input.UserPoolId))
	if !ok {
		return
	}
	client, ok := p.GetClient(aws.ToString(input.ClientId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("user pool client not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &cognitoidentityprovider.DescribeUserPoolClientOutput{
		UserPoolClient: &types.UserPoolClientType{
			ClientId:   aws.String(client.ID),
			ClientName: aws.String(client.Name),
			UserPoolId: aws.String(client.PoolID),
		},
	})
}

func (s *Server) listUserPoolClients(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cognitoidentityprovider.ListUserPoolClientsInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	p, ok := s.pool(rw, aws.ToString(input.UserPoolId))
	if !ok {
		return
	}
	clients := p.ListClients()
	out := make([]types.UserPoolClientDescription, 0, len(clients))
	for _, c := range clients {
		out = append(out, types.UserPoolClientDescription{ClientId: aws.String(c.ID), ClientName: aws.String(c.Name), UserPoolId: aws.String(c.PoolID)})
	}
	protocol.WriteJSONResult(rw, ContentType, &cognitoidentityprovider.ListUserPoolClientsOutput{UserPoolClients: out})
}

func (s *Server) deleteUserPoolClient(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cognitoidentityprovider.DeleteUserPoolClientInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	p, ok := s.pool(rw, aws.ToString(input.UserPoolId))
	if !ok {
		return
	}
	if !p.DeleteClient(aws.ToString(input.ClientId)) {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("user pool client not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &cognitoidentityprovider.DeleteUserPoolClientOutput{})
}

func (s *Server) adminCreateUser(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cognitoidentityprovider.AdminCreateUserInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	p, ok := s.pool(rw, aws.ToString(input.UserPoolId))
	if !ok {
		return
	}
	attrs := make(map[string]string, len(input.UserAttributes))
	for _, a := range input.UserAttributes {
		attrs[aws.ToString(a.Name)] = aws.ToString(a.Value)
	}
	u, created := p.CreateUser(s.clock.Now(), aws.ToString(input.Username), attrs, aws.ToString(input.TemporaryPassword))
	if !created {
		protocol.WriteJSONError(rw, ContentType, ErrorUsernameExists("username already exists"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &cognitoidentityprovider.AdminCreateUserOutput{
		User: &types.UserType{
			Username:           aws.String(u.Username),
			Attributes:         userAttributes(u.Attributes),
			Enabled:            u.Enabled,
			UserStatus:         userStatus(u),
			UserCreateDate:     aws.Time(u.Created),
			UserLastModifiedDate: aws.Time(u.LastModified),
		},
	})
}

func (s *Server) adminGetUser(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cognitoidentityprovider.AdminGetUserInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	p, ok := s.pool(rw, aws.ToString(input.UserPoolId))
	if !ok {
		return
	}
	u, ok := p.GetUser(aws.ToString(input.Username))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("user not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &cognitoidentityprovider.AdminGetUserOutput{
		Username:       aws.String(u.Username),
		UserAttributes: userAttributes(u.Attributes),
		Enabled:        u.Enabled,
		UserStatus:     userStatus(u),
	})
}

func (s *Server) adminDeleteUser(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cognitoidentityprovider.AdminDeleteUserInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	p, ok := s.pool(rw, aws.ToString(input.UserPoolId))
	if !ok {
		return
	}
	if !p.DeleteUser(aws.ToString(input.Username)) {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("user not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &cognitoidentityprovider.AdminDeleteUserOutput{})
}

func (s *Server) listUsers(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cognitoidentityprovider.ListUsersInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	p, ok := s.pool(rw, aws.ToString(input.UserPoolId))
	if !ok {
		return
	}
	users := p.ListUsers()
	out := make([]types.UserType, 0, len(users))
	for _, u := range users {
		out = append(out, types.UserType{
			Username:   aws.String(u.Username),
			Attributes: userAttributes(u.Attributes),
			Enabled:    u.Enabled,
			UserStatus: userStatus(u),
		})
	}
	protocol.WriteJSONResult(rw, ContentType, &cognitoidentityprovider.ListUsersOutput{Users: out})
}

func (s *Server) adminUpdateUserAttributes(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cognitoidentityprovider.AdminUpdateUserAttributesInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	p, ok := s.pool(rw, aws.ToString(input.UserPoolId))
	if !ok {
		return
	}
	attrs := make(map[string]string, len(input.UserAttributes))
	for _, a := range input.UserAttributes {
		attrs[aws.ToString(a.Name)] = aws.ToString(a.Value)
	}
	if !p.UpdateAttributes(aws.ToString(input.Username), attrs) {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("user not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &cognitoidentityprovider.AdminUpdateUserAttributesOutput{})
}

func (s *Server) adminDisableUser(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cognitoidentityprovider.AdminDisableUserInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	p, ok := s.pool(rw, aws.ToString(input.UserPoolId))
	if !ok {
		return
	}
	if !p.SetUserEnabled(aws.ToString(input.Username), false) {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("user not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &cognitoidentityprovider.AdminDisableUserOutput{})
}

func (s *Server) adminEnableUser(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cognitoidentityprovider.AdminEnableUserInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	p, ok := s.pool(rw, aws.ToString(input.UserPoolId))
	if !ok {
		return
	}
	if !p.SetUserEnabled(aws.ToString(input.Username), true) {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("user not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &cognitoidentityprovider.AdminEnableUserOutput{})
}

func (s *Server) adminSetUserPassword(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cognitoidentityprovider.AdminSetUserPasswordInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	p, ok := s.pool(rw, aws.ToString(input.UserPoolId))
	if !ok {
		return
	}
	if !p.SetPassword(s.clock.Now(), aws.ToString(input.Username), aws.ToString(input.Password), input.Permanent) {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("user not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &cognitoidentityprovider.AdminSetUserPasswordOutput{})
}

func (s *Server) adminInitiateAuth(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cognitoidentityprovider.AdminInitiateAuthInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	p, ok := s.pool(rw, aws.ToString(input.UserPoolId))
	if !ok {
		return
	}
	username := input.AuthParameters["USERNAME"]
	password := input.AuthParameters["PASSWORD"]
	access, idToken, refresh, ok := p.Authenticate(username, password)
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotAuthorized("incorrect username or password"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &cognitoidentityprovider.AdminInitiateAuthOutput{
		AuthenticationResult: &types.AuthenticationResultType{
			AccessToken:  aws.String(access),
			IdToken:      aws.String(idToken),
			RefreshToken: aws.String(refresh),
			ExpiresIn:    3600,
			TokenType:    aws.String("Bearer"),
		},
	})
}
