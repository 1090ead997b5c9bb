package kmsengine

import (
	"crypto/rand"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/jonboulle/clockwork"

	"awslite/internal/protocol"
)

const (
	ServicePrefix = "TrentService"
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
	s.dispatcher.Handle("CreateKey", s.createKey)
	s.dispatcher.Handle("DescribeKey", s.describeKey)
	s.dispatcher.Handle("ListKeys", s.listKeys)
	s.dispatcher.Handle("ScheduleKeyDeletion", s.scheduleKeyDeletion)
	s.dispatcher.Handle("CancelKeyDeletion", s.cancelKeyDeletion)
	s.dispatcher.Handle("EnableKey", s.enableKey)
	s.dispatcher.Handle("DisableKey", s.disableKey)
	s.dispatcher.Handle("Encrypt", s.encrypt)
	s.dispatcher.Handle("Decrypt", s.decrypt)
	s.dispatcher.Handle("GenerateDataKey", s.generateDataKey)
	s.dispatcher.Handle("CreateAlias", s.createAlias)
	s.dispatcher.Handle("DeleteAlias", s.deleteAlias)
	s.dispatcher.Handle("ListAliases", s.listAliases)
	s.dispatcher.Handle("TagResource", s.tagResource)
	s.dispatcher.Handle("UntagResource", s.untagResource)
	s.dispatcher.Handle("ListResourceTags", s.listResourceTags)
	s.dispatcher.Handle("EnableKeyRotation", s.enableKeyRotation)
	s.dispatcher.Handle("DisableKeyRotation", s.disableKeyRotation)
	s.dispatcher.Handle("GetKeyRotationStatus", s.getKeyRotationStatus)
	s.dispatcher.Handle("PutKeyPolicy", s.putKeyPolicy)
	s.dispatcher.Handle("GetKeyPolicy", s.getKeyPolicy)
}

func (s *Server) createKey(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kms.CreateKeyInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	k := s.registry.CreateKey(s.clock.Now(), aws.ToString(input.Description))
	protocol.WriteJSONResult(rw, ContentType, &kms.CreateKeyOutput{
		KeyMetadata: keyMetadata(k),
	})
}

func keyMetadata(k *Key) *types.KeyMetadata {
	state := types.KeyStateEnabled
	if !k.Enabled {
		state = types.KeyStateDisabled
	}
	if k.PendingDeletion {
		state = types.KeyStatePendingDeletion
	}
	return &types.KeyMetadata{
		KeyId:       aws.String(k.KeyID),
		Arn:         aws.String(k.ARN),
		Description: aws.String(k.Description),
		Enabled:     k.Enabled,
		CreationDate: aws.Time(k.Created),
		KeyState:    state,
		KeyUsage:    types.KeyUsageTypeEncryptDecrypt,
	}
}

func (s *Server) describeKey(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kms.DescribeKeyInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	k, ok := s.registry.GetKey(aws.ToString(input.KeyId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("key not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &kms.DescribeKeyOutput{KeyMetadata: keyMetadata(k)})
}

func (s *Server) listKeys(rw http.ResponseWriter, req *http.Request) {
	keys := s.registry.ListKeys()
	out := make([]types.KeyListEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, types.KeyListEntry{KeyId: aws.String(k.KeyID), KeyArn: aws.String(k.ARN)})
	}
	protocol.WriteJSONResult(rw, ContentType, &kms.ListKeysOutput{Keys: out})
}

func (s *Server) scheduleKeyDeletion(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kms.ScheduleKeyDeletionInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	k, ok := s.registry.GetKey(aws.ToString(input.KeyId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("key not found"))
		return
	}
	k.mu.Lock()
	k.PendingDeletion = true
	k.mu.Unlock()
	protocol.WriteJSONResult(rw, ContentType, &kms.ScheduleKeyDeletionOutput{KeyId: aws.String(k.KeyID)})
}

func (s *Server) cancelKeyDeletion(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kms.CancelKeyDeletionInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	k, ok := s.registry.GetKey(aws.ToString(input.KeyId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("key not found"))
		return
	}
	k.mu.Lock()
	k.PendingDeletion = false
	k.mu.Unlock()
	protocol.WriteJSONResult(rw, ContentType, &kms.CancelKeyDeletionOutput{KeyId: aws.String(k.KeyID)})
}

func (s *Server) enableKey(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kms.EnableKeyInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	k, ok := s.registry.GetKey(aws.ToString(input.KeyId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("key not found"))
		return
	}
	k.mu.Lock()
	k.Enabled = true
	k.mu.Unlock()
	protocol.WriteJSONResult(rw, ContentType, &kms.EnableKeyOutput{})
}

func (s *Server) disableKey(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kms.DisableKeyInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	k, ok := s.registry.GetKey(aws.ToString(input.KeyId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("key not found"))
		return
	}
	k.mu.Lock()
	k.Enabled = false
	k.mu.Unlock()
	protocol.WriteJSONResult(rw, ContentType, &kms.DisableKeyOutput{})
}

func (s *Server) encrypt(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kms.EncryptInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	k, ok := s.registry.GetKey(aws.ToString(input.KeyId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("key not found"))
		return
	}
	ciphertext := simulatedEncrypt(k.KeyID, input.Plaintext)
	protocol.WriteJSONResult(rw, ContentType, &kms.EncryptOutput{
		KeyId:          aws.String(k.KeyID),
		CiphertextBlob: []byte(ciphertext),
	})
}

func (s *Server) decrypt(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kms.DecryptInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	keyID, plaintext, ok := simulatedDecrypt(string(input.CiphertextBlob))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorInvalidCiphertext("invalid ciphertext"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &kms.DecryptOutput{KeyId: aws.String(keyID), Plaintext: plaintext})
}

func (s *Server) generateDataKey(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kms.GenerateDataKeyInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	k, ok := s.registry.GetKey(aws.ToString(input.KeyId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("key not found"))
		return
	}
	size := 32
	if input.NumberOfBytes != nil {
		size = int(*input.NumberOfBytes)
	}
	plaintext := make([]byte, size)
	_, _ = rand.Read(plaintext)
	ciphertext := simulatedEncrypt(k.KeyID, plaintext)
	protocol.WriteJSONResult(rw, ContentType, &kms.GenerateDataKeyOutput{
		KeyId:          aws.String(k.KeyID),
		Plaintext:      plaintext,
		CiphertextBlob: []byte(ciphertext),
	})
}

func (s *Server) createAlias(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kms.CreateAliasInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	keyID := s.registry.resolveKeyID(aws.ToString(input.TargetKeyId))
	if !s.registry.CreateAlias(aws.ToString(input.AliasName), keyID) {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("alias already exists"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &kms.CreateAliasOutput{})
}

func (s *Server) deleteAlias(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kms.DeleteAliasInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	if !s.registry.DeleteAlias(aws.ToString(input.AliasName)) {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("alias not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &kms.DeleteAliasOutput{})
}

func (s *Server) listAliases(rw http.ResponseWriter, req *http.Request) {
	names := s.registry.ListAliases()
	out := make([]types.AliasListEntry, 0, len(names))
	for _, name := range names {
		out = append(out, types.AliasListEntry{AliasName: aws.String(name)})
	}
	protocol.WriteJSONResult(rw, ContentType, &kms.ListAliasesOutput{Aliases: out})
}

func (s *Server) tagResource(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kms.TagResourceInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	k, ok := s.registry.GetKey(aws.ToString(input.KeyId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("key not found"))
		return
	}
	k.mu.Lock()
	for _, tag := range input.Tags {
		k.Tags[aws.ToString(tag.TagKey)] = aws.ToString(tag.TagValue)
	}
	k.mu.Unlock()
	protocol.WriteJSONResult(rw, ContentType, &kms.TagResourceOutput{})
}

func (s *Server) untagResource(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kms.UntagResourceInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	k, ok := s.registry.GetKey(aws.ToString(input.KeyId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("key not found"))
		return
	}
	k.mu.Lock()
	for _, key := range input.TagKeys {
		delete(k.Tags, key)
	}
	k.mu.Unlock()
	protocol.WriteJSONResult(rw, ContentType, &kms.UntagResourceOutput{})
}

func (s *Server) listResourceTags(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kms.ListResourceTagsInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	k, ok := s.registry.GetKey(aws.ToString(input.KeyId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("key not found"))
		return
	}
	var tags []types.Tag
	for key, v := range k.tagsSnapshot() {
		tags = append(tags, types.Tag{TagKey: aws.String(key), TagValue: aws.String(v)})
	}
	protocol.WriteJSONResult(rw, ContentType, &kms.ListResourceTagsOutput{Tags: tags})
}

func (s *Server) enableKeyRotation(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kms.EnableKeyRotationInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	k, ok := s.registry.GetKey(aws.ToString(input.KeyId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("key not found"))
		return
	}
	k.mu.Lock()
	k.RotationEnabled = true
	k.mu.Unlock()
	protocol.WriteJSONResult(rw, ContentType, &kms.EnableKeyRotationOutput{})
}

func (s *Server) disableKeyRotation(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kms.DisableKeyRotationInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	k, ok := s.registry.GetKey(aws.ToString(input.KeyId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("key not found"))
		return
	}
	k.mu.Lock()
	k.RotationEnabled = false
	k.mu.Unlock()
	protocol.WriteJSONResult(rw, ContentType, &kms.DisableKeyRotationOutput{})
}

func (s *Server) getKeyRotationStatus(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kms.GetKeyRotationStatusInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	k, ok := s.registry.GetKey(aws.ToString(input.KeyId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("key not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &kms.GetKeyRotationStatusOutput{KeyRotationEnabled: k.RotationEnabled})
}

func (s *Server) putKeyPolicy(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kms.PutKeyPolicyInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	k, ok := s.registry.GetKey(aws.ToString(input.KeyId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("key not found"))
		return
	}
	k.mu.Lock()
	k.Policy = aws.ToString(input.Policy)
	k.mu.Unlock()
	protocol.WriteJSONResult(rw, ContentType, &kms.PutKeyPolicyOutput{})
}

func (s *Server) getKeyPolicy(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kms.GetKeyPolicyInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	k, ok := s.registry.GetKey(aws.ToString(input.KeyId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("key not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &kms.GetKeyPolicyOutput{Policy: aws.String(k.Policy)})
}
