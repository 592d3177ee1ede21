package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mitchellh/mapstructure"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"

	"github.com/tablehost/restaurantapi/internal/domain"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Kind names a record collection that has request body schemas.
type Kind string

const (
	KindOperator  Kind = "operator"
	KindCustomer  Kind = "customer"
	KindInventory Kind = "inventory"
	KindOrder     Kind = "order"
)

// Op distinguishes create bodies from update bodies.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
)

// Validator checks and normalizes request bodies.
type Validator interface {
	// Validate returns the normalized body or a *domain.ValidationError.
	Validate(kind Kind, op Op, body map[string]any) (map[string]any, error)
}

// propertyHints carries the parts of a property schema the normalizer and
// message formatter read. Keys prefixed with x- are ignored by the schema
// compiler.
type propertyHints struct {
	Type          string            `json:"type"`
	MinLength     *int              `json:"minLength"`
	Minimum       *json.Number      `json:"minimum"`
	Maximum       *json.Number      `json:"maximum"`
	Format        string            `json:"format"`
	Lowercase     bool              `json:"x-lowercase"`
	EmptyAsAbsent bool              `json:"x-empty-absent"`
	Messages      map[string]string `json:"x-messages"`
}

type schemaHints struct {
	Required   []string                 `json:"required"`
	Properties map[string]propertyHints `json:"properties"`
}

type compiledSchema struct {
	schema *jsonschema.Schema
	hints  schemaHints
}

// SchemaValidator implements Validator using santhosh-tekuri/jsonschema/v6
// over the embedded schema files.
type SchemaValidator struct {
	schemaCache *lru.Cache[string, *compiledSchema]
}

// NewSchemaValidator creates a new validator with LRU caching for compiled schemas
func NewSchemaValidator(cacheSize int) (*SchemaValidator, error) {
	if cacheSize <= 0 {
		cacheSize = 16
	}
	cache, err := lru.New[string, *compiledSchema](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create schema cache: %w", err)
	}
	return &SchemaValidator{schemaCache: cache}, nil
}

// Validate normalizes body (trim, lowercase, empty-as-absent, unknown fields
// dropped, numeric strings coerced) and checks it against the kind/op schema.
func (v *SchemaValidator) Validate(k Kind, op Op, body map[string]any) (map[string]any, error) {
	cs, err := v.schemaFor(k, op)
	if err != nil {
		return nil, err
	}

	doc := normalize(cs.hints, body)

	if err := cs.schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return nil, fmt.Errorf("validate %s %s: %w", k, op, err)
		}
		return nil, toDomainError(cs.hints, doc, ve)
	}
	return doc, nil
}

func (v *SchemaValidator) schemaFor(k Kind, op Op) (*compiledSchema, error) {
	key := string(k) + "_" + string(op)
	if cs, ok := v.schemaCache.Get(key); ok {
		return cs, nil
	}
	cs, err := compileSchema(key)
	if err != nil {
		return nil, err
	}
	v.schemaCache.Add(key, cs)
	return cs, nil
}

func compileSchema(name string) (*compiledSchema, error) {
	raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q: %w", name, err)
	}

	var hints schemaHints
	if err := json.Unmarshal(raw, &hints); err != nil {
		return nil, fmt.Errorf("parse schema hints %q: %w", name, err)
	}

	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse schema JSON %q: %w", name, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft7)
	compiler.AssertFormat()

	url := name + ".json"
	if err := compiler.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", name, err)
	}
	return &compiledSchema{schema: schema, hints: hints}, nil
}

func normalize(hints schemaHints, body map[string]any) map[string]any {
	doc := make(map[string]any, len(body))
	for field, value := range body {
		prop, known := hints.Properties[field]
		if !known {
			continue
		}
		if value == nil {
			if prop.EmptyAsAbsent {
				continue
			}
			doc[field] = value
			continue
		}
		if s, ok := value.(string); ok {
			s = strings.TrimSpace(s)
			if s == "" && prop.EmptyAsAbsent {
				continue
			}
			if prop.Lowercase {
				s = strings.ToLower(s)
			}
			doc[field] = coerceString(prop.Type, s)
			continue
		}
		doc[field] = coerceNumber(value)
	}
	return doc
}

// coerceString converts numeric and boolean strings for non-string
// properties, leaving everything else for the schema to reject.
func coerceString(typ, s string) any {
	switch typ {
	case "integer", "number":
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case "boolean":
		if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
			return b
		}
	}
	return s
}

func coerceNumber(value any) any {
	switch n := value.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
	case float64:
		if n == float64(int64(n)) {
			return int64(n)
		}
	case int:
		return int64(n)
	}
	return value
}

func toDomainError(hints schemaHints, doc map[string]any, ve *jsonschema.ValidationError) *domain.ValidationError {
	byField := map[string]string{}
	for _, leaf := range leaves(ve) {
		if req, ok := leaf.ErrorKind.(*kind.Required); ok {
			for _, field := range req.Missing {
				if _, seen := byField[field]; !seen {
					byField[field] = fmt.Sprintf("%q is required", field)
				}
			}
			continue
		}
		field := fieldOf(leaf.InstanceLocation)
		if _, seen := byField[field]; seen {
			continue
		}
		byField[field] = message(field, keywordOf(leaf), hints.Properties[field], doc[field])
	}

	fields := make([]string, 0, len(byField))
	for f := range byField {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	out := &domain.ValidationError{Details: make([]domain.FieldError, 0, len(fields))}
	for _, f := range fields {
		out.Details = append(out.Details, domain.FieldError{Field: f, Message: byField[f]})
	}
	return out
}

func leaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, c := range ve.Causes {
		out = append(out, leaves(c)...)
	}
	return out
}

func fieldOf(loc []string) string {
	for _, part := range loc {
		if part != "" {
			return part
		}
	}
	return "value"
}

func keywordOf(ve *jsonschema.ValidationError) string {
	path := ve.ErrorKind.KeywordPath()
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}

func message(field, keyword string, prop propertyHints, value any) string {
	if custom, ok := prop.Messages[keyword]; ok {
		return custom
	}
	q := strconv.Quote(field)
	switch keyword {
	case "type":
		if prop.Type == "integer" {
			if _, isFloat := value.(float64); isFloat {
				return q + " must be an integer"
			}
			return q + " must be a number"
		}
		return fmt.Sprintf("%s must be a %s", q, prop.Type)
	case "minLength":
		if s, ok := value.(string); ok && s == "" {
			return q + " is not allowed to be empty"
		}
		if prop.MinLength != nil {
			return fmt.Sprintf("%s length must be at least %d characters long", q, *prop.MinLength)
		}
	case "minimum":
		if prop.Minimum != nil {
			return fmt.Sprintf("%s must be greater than or equal to %s", q, prop.Minimum.String())
		}
	case "maximum":
		if prop.Maximum != nil {
			return fmt.Sprintf("%s must be less than or equal to %s", q, prop.Maximum.String())
		}
	case "format":
		return fmt.Sprintf("%s must be a valid %s", q, prop.Format)
	case "pattern":
		return q + " has an invalid format"
	}
	return q + " is invalid"
}

// Decode copies a validated document into a record struct using its json
// tags.
func Decode(doc map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Result:     out,
		DecodeHook: exactIntHook,
	})
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}
	if err := decoder.Decode(doc); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// exactIntHook refuses to narrow a number into an int field it does not fit.
func exactIntHook(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Int {
		return data, nil
	}
	switch n := data.(type) {
	case float64:
		if n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("%v does not fit an integer field", n)
		}
		return int(n), nil
	case int64:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("%d does not fit an integer field", n)
		}
		return int(n), nil
	}
	return data, nil
}
