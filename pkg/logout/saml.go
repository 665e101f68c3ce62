package logout

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"time"

	dsig "github.com/russellhaering/goxmldsig"

	"github.com/gatehouse-auth/gatehouse/pkg/credentials"
)

// logoutRequest is the subset of a SAML LogoutRequest the extractor needs.
// Signature validation happens upstream in the protocol layer; this only
// classifies the payload into session-key credentials.
type logoutRequest struct {
	XMLName        xml.Name `xml:"LogoutRequest"`
	ID             string   `xml:"ID,attr"`
	NotOnOrAfter   string   `xml:"NotOnOrAfter,attr"`
	Issuer         string   `xml:"Issuer"`
	NameID         string   `xml:"NameID"`
	SessionIndexes []string `xml:"SessionIndex"`
}

// SAMLExtractor turns a back-channel SAML LogoutRequest into the
// session-key credentials the processor consumes.
type SAMLExtractor struct {
	clock *dsig.Clock
}

// NewSAMLExtractor creates an extractor. A nil clock uses real time; tests
// inject a fake clock.
func NewSAMLExtractor(clock *dsig.Clock) *SAMLExtractor {
	if clock == nil {
		clock = dsig.NewRealClock()
	}
	return &SAMLExtractor{clock: clock}
}

// Extract parses a base64-encoded LogoutRequest and returns credentials
// carrying its first SessionIndex. Requests past their NotOnOrAfter bound
// are rejected.
func (e *SAMLExtractor) Extract(encodedRequest string) (*credentials.SessionKeyCredentials, error) {
	raw, err := base64.StdEncoding.DecodeString(encodedRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to decode logout request: %w", err)
	}

	var request logoutRequest
	if err := xml.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("failed to parse logout request: %w", err)
	}

	if request.NotOnOrAfter != "" {
		bound, err := time.Parse(time.RFC3339, request.NotOnOrAfter)
		if err != nil {
			return nil, fmt.Errorf("malformed NotOnOrAfter in logout request: %w", err)
		}
		if !e.clock.Now().Before(bound) {
			return nil, fmt.Errorf("logout request %s expired", request.ID)
		}
	}

	if len(request.SessionIndexes) == 0 || request.SessionIndexes[0] == "" {
		return nil, fmt.Errorf("logout request %s carries no session index", request.ID)
	}

	return credentials.NewSessionKey(request.SessionIndexes[0]), nil
}
