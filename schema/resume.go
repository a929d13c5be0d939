package schema

import "fmt"

// PayloadVariant selects the credential-response payload encoding. Runtime
// backends disagree on which one their response validator accepts, so the
// choice is configuration, not a constant.
type PayloadVariant string

const (
	// PayloadFull passes the entire mutated authorization config through
	// unchanged.
	PayloadFull PayloadVariant = "full"
	// PayloadMinimal reduces the response to the fields the strictest
	// validator requires, dropping the rest of the original config.
	PayloadMinimal PayloadVariant = "minimal"
)

// EncodeResume builds the credential-response message that unblocks a
// suspended tool call. The config must already carry the authorization
// response URI attached by the correlator.
func EncodeResume(functionCallID string, config *AuthConfig, variant PayloadVariant) (*Message, error) {
	if functionCallID == "" {
		return nil, fmt.Errorf("function call id is required")
	}
	responseURI := config.AuthResponseURI()
	if responseURI == "" {
		return nil, fmt.Errorf("authorization response uri is not set")
	}
	var response map[string]any
	switch variant {
	case PayloadMinimal:
		response = minimalPayload(config, responseURI)
	case PayloadFull, "":
		response = config.Data()
	default:
		return nil, fmt.Errorf("unknown payload variant %q", variant)
	}
	return &Message{
		Role: "user",
		Parts: []Part{{
			FunctionResponse: &FunctionResponse{
				Name:     CredentialRequestFunction,
				ID:       functionCallID,
				Response: response,
			},
		}},
	}, nil
}

// minimalPayload keeps only authScheme, credentialKey and the exchanged
// oauth2 response URI, mirroring the casing the source config used.
func minimalPayload(config *AuthConfig, responseURI string) map[string]any {
	_, snake, _ := config.exchanged()
	if snake {
		return map[string]any{
			"auth_scheme":    config.AuthScheme(),
			"credential_key": config.CredentialKey(),
			"exchanged_auth_credential": map[string]any{
				"auth_type": config.AuthType(),
				"oauth2":    map[string]any{"auth_response_uri": responseURI},
			},
		}
	}
	return map[string]any{
		"authScheme":    config.AuthScheme(),
		"credentialKey": config.CredentialKey(),
		"exchangedAuthCredential": map[string]any{
			"authType": config.AuthType(),
			"oauth2":   map[string]any{"authResponseUri": responseURI},
		},
	}
}
