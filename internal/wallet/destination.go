package wallet

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tapvault/backend/internal/models"
)

// Destination is the payout target for a withdrawal. Which fields are
// required depends on the method; the schemas below are the single source
// of truth for that.
type Destination struct {
	UPIID string `json:"upi_id,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

const upiSchema = `{
	"type": "object",
	"properties": {
		"upi_id": {"type": "string", "minLength": 3, "pattern": "@"}
	},
	"required": ["upi_id"]
}`

const giftCardSchema = `{
	"type": "object",
	"properties": {
		"email": {"type": "string", "minLength": 3, "pattern": "@"},
		"phone": {"type": "string", "minLength": 10}
	},
	"required": ["email", "phone"]
}`

// destinationValidator holds one compiled schema per payout method.
type destinationValidator struct {
	schemas map[string]*jsonschema.Schema
}

func newDestinationValidator() (*destinationValidator, error) {
	v := &destinationValidator{schemas: make(map[string]*jsonschema.Schema)}
	for method, raw := range map[string]string{
		models.MethodUPI:        upiSchema,
		models.MethodAmazon:     giftCardSchema,
		models.MethodFlipkart:   giftCardSchema,
		models.MethodGooglePlay: giftCardSchema,
	} {
		id := "https://tapvault.dev/schemas/withdrawal." + method
		schema, err := jsonschema.CompileString(id, raw)
		if err != nil {
			return nil, fmt.Errorf("compile destination schema %q: %w", method, err)
		}
		v.schemas[method] = schema
	}
	return v, nil
}

// validate checks dest against the method's schema. Unknown methods are the
// caller's problem; the service rejects them before reaching here.
func (v *destinationValidator) validate(method string, dest Destination) error {
	schema, ok := v.schemas[method]
	if !ok {
		return fmt.Errorf("no destination schema for method %q", method)
	}
	raw, err := json.Marshal(dest)
	if err != nil {
		return err
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return schema.Validate(doc)
}
