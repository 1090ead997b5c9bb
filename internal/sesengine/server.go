package sesengine

import (
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/jonboulle/clockwork"

	"awslite/internal/protocol"
)

func NewServer(clock clockwork.Clock) *Server {
	s := &Server{clock: clock, registry: NewRegistry()}
	s.router = protocol.NewRestRouter()
	s.registerRoutes()
	return s
}

type Server struct {
	clock    clockwork.Clock
	registry *Registry
	router   *protocol.RestRouter
}

var _ http.Handler = (*Server)(nil)

func (s *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) { s.router.ServeHTTP(rw, req) }
func (s *Server) Registry() *Registry                                 { return s.registry }

func (s *Server) registerRoutes() {
	s.router.Handle(http.MethodPost, "/v2/email/identities", s.createEmailIdentity)
	s.router.Handle(http.MethodGet, "/v2/email/identities", s.listEmailIdentities)
	s.router.Handle(http.MethodGet, "/v2/email/identities/{EmailIdentity}", s.getEmailIdentity)
	s.router.Handle(http.MethodDelete, "/v2/email/identities/{EmailIdentity}", s.deleteEmailIdentity)
	s.router.Handle(http.MethodPost, "/v2/email/outbound-emails", s.sendEmail)
}

func identityType(name string) string {
	if len(name) > 0 && name[0] != '@' {
		for _, c := range name {
			if c == '@' {
				return "EMAIL_ADDRESS"
			}
		}
	}
	return "DOMAIN"
}

type createEmailIdentityRequest struct {
	EmailIdentity string
}

func (s *Server) createEmailIdentity(rw http.ResponseWriter, req *http.Request) {
	input, rerr := protocol.DecodeRestJSON[createEmailIdentityRequest](req)
	if rerr != nil {
		protocol.WriteRestError(rw, rerr)
		return
	}
	id := s.registry.CreateIdentity(input.EmailIdentity, identityType(input.EmailIdentity))
	protocol.WriteRestJSON(rw, http.StatusOK, struct {
		IdentityType         types.IdentityType
		VerifiedForSendingStatus bool
	}{IdentityType: types.IdentityType(id.Type), VerifiedForSendingStatus: id.Verified})
}

func (s *Server) listEmailIdentities(rw http.ResponseWriter, req *http.Request) {
	identities := s.registry.ListIdentities()
	out := make([]types.IdentityInfo, 0, len(identities))
	for _, id := range identities {
		out = append(out, types.IdentityInfo{
			IdentityName:        aws.String(id.Name),
			IdentityType:        types.IdentityType(id.Type),
			SendingEnabled:      id.Verified,
		})
	}
	protocol.WriteRestJSON(rw, http.StatusOK, struct {
		EmailIdentities []types.IdentityInfo
	}{EmailIdentities: out})
}

func (s *Server) getEmailIdentity(rw http.ResponseWriter, req *http.Request) {
	name := protocol.PathParam(req, "EmailIdentity")
	id, ok := s.registry.GetIdentity(name)
	if !ok {
		protocol.WriteRestError(rw, ErrorNotFound("identity not found: "+name))
		return
	}
	protocol.WriteRestJSON(rw, http.StatusOK, struct {
		IdentityType             types.IdentityType
		VerifiedForSendingStatus bool
	}{IdentityType: types.IdentityType(id.Type), VerifiedForSendingStatus: id.Verified})
}

func (s *Server) deleteEmailIdentity(rw http.ResponseWriter, req *http.Request) {
	name := protocol.PathParam(req, "EmailIdentity")
	if !s.registry.DeleteIdentity(name) {
		protocol.WriteRestError(rw, ErrorNotFound("identity not found: "+name))
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}

type sendEmailRequest struct {
	FromEmailAddress string
	Destination      struct {
		ToAddresses []string
	}
	Content struct {
		Simple struct {
			Subject struct{ Data string }
			Body    struct {
				Text struct{ Data string }
			}
		}
	}
}

func (s *Server) sendEmail(rw http.ResponseWriter, req *http.Request) {
	input, rerr := protocol.DecodeRestJSON[sendEmailRequest](req)
	if rerr != nil {
		protocol.WriteRestError(rw, rerr)
		return
	}
	msg := s.registry.SendEmail(s.clock.Now(), input.FromEmailAddress, input.Destination.ToAddresses,
		input.Content.Simple.Subject.Data, input.Content.Simple.Body.Text.Data)
	protocol.WriteRestJSON(rw, http.StatusOK, struct {
		MessageId string
	}{MessageId: msg.MessageID})
}
