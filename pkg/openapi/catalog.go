package openapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-recoform/pkg/model"
)

// MethodParam is the query parameter that carries the method value on
// endpoints shared by several methods.
const MethodParam = "method"

// OperationIDs maps each recommendation method to the contract operation
// that serves it.
var OperationIDs = map[model.Method]string{
	model.MethodUserBased: "recommendByUser",
	model.MethodSVD:       "recommendByUser",
	model.MethodItemBased: "recommendByItem",
	model.MethodCBF:       "recommendByProduct",
}

// Endpoint is the resolved request shape for one method.
type Endpoint struct {
	Method          model.Method
	OperationID     string
	Path            string
	IdentifierParam string
	// SendMethod is set when the operation declares a method query parameter.
	SendMethod bool
}

// URL composes the request URL against base. Values are query escaped with
// spaces encoded as %20, and parameters keep the identifier-first order.
func (e Endpoint) URL(base, identifier string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	b.WriteString(e.Path)
	b.WriteByte('?')
	b.WriteString(e.IdentifierParam)
	b.WriteByte('=')
	b.WriteString(escape(identifier))
	if e.SendMethod {
		b.WriteByte('&')
		b.WriteString(MethodParam)
		b.WriteByte('=')
		b.WriteString(escape(string(e.Method)))
	}
	return b.String()
}

func escape(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

// Catalog holds the endpoints resolved from a contract.
type Catalog struct {
	location  string
	servers   []string
	endpoints map[model.Method]Endpoint
}

// Endpoint returns the endpoint for method.
func (c *Catalog) Endpoint(method model.Method) (Endpoint, error) {
	if c == nil {
		return Endpoint{}, errors.New("openapi: catalog is nil")
	}
	endpoint, ok := c.endpoints[method]
	if !ok {
		return Endpoint{}, fmt.Errorf("openapi: no endpoint for method %q: %w", method, model.ErrUnknownMethod)
	}
	return endpoint, nil
}

// Endpoints lists the resolved endpoints in selector order.
func (c *Catalog) Endpoints() []Endpoint {
	out := make([]Endpoint, 0, len(c.endpoints))
	for _, method := range model.Methods() {
		if endpoint, ok := c.endpoints[method]; ok {
			out = append(out, endpoint)
		}
	}
	return out
}

// Servers returns the server URLs the contract declares.
func (c *Catalog) Servers() []string {
	return append([]string(nil), c.servers...)
}

// Location reports the document the catalog was parsed from.
func (c *Catalog) Location() string {
	return c.location
}

// ParseCatalog loads and validates doc with kin-openapi, then resolves an
// endpoint for every supported method.
func ParseCatalog(ctx context.Context, doc Document) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load %s: %w", doc.Location(), err)
	}
	if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi: validate %s: %w", doc.Location(), err)
	}

	type getOperation struct {
		path      string
		operation *openapi3.Operation
	}
	operations := make(map[string]getOperation)
	if spec.Paths != nil {
		for path, item := range spec.Paths.Map() {
			if item == nil || item.Get == nil || item.Get.OperationID == "" {
				continue
			}
			operations[item.Get.OperationID] = getOperation{path: path, operation: item.Get}
		}
	}

	catalog := &Catalog{
		location:  doc.Location(),
		endpoints: make(map[model.Method]Endpoint, len(OperationIDs)),
	}
	for _, server := range spec.Servers {
		if server != nil && server.URL != "" {
			catalog.servers = append(catalog.servers, server.URL)
		}
	}

	for _, method := range model.Methods() {
		opID := OperationIDs[method]
		found, ok := operations[opID]
		if !ok {
			return nil, fmt.Errorf("openapi: %s: missing GET operation %q for method %q", doc.Location(), opID, method)
		}
		base := Endpoint{OperationID: opID, Path: found.path}
		endpoint, err := resolveEndpoint(method, base, found.operation.Parameters)
		if err != nil {
			return nil, fmt.Errorf("openapi: %s: %w", doc.Location(), err)
		}
		catalog.endpoints[method] = endpoint
	}
	return catalog, nil
}

func resolveEndpoint(method model.Method, endpoint Endpoint, params openapi3.Parameters) (Endpoint, error) {
	endpoint.Method = method
	var identifiers []string
	for _, ref := range params {
		if ref == nil || ref.Value == nil || ref.Value.In != openapi3.ParameterInQuery {
			continue
		}
		param := ref.Value
		if param.Name == MethodParam {
			if !enumAllows(param.Schema, string(method)) {
				return Endpoint{}, fmt.Errorf("operation %q does not accept method %q", endpoint.OperationID, method)
			}
			endpoint.SendMethod = true
			continue
		}
		if param.Required {
			identifiers = append(identifiers, param.Name)
		}
	}
	if len(identifiers) != 1 {
		sort.Strings(identifiers)
		return Endpoint{}, fmt.Errorf("operation %q must declare exactly one required identifier parameter, found %v", endpoint.OperationID, identifiers)
	}
	endpoint.IdentifierParam = identifiers[0]
	return endpoint, nil
}

func enumAllows(schema *openapi3.SchemaRef, value string) bool {
	if schema == nil || schema.Value == nil || len(schema.Value.Enum) == 0 {
		return true
	}
	for _, candidate := range schema.Value.Enum {
		if s, ok := candidate.(string); ok && s == value {
			return true
		}
	}
	return false
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// DefaultCatalog parses the embedded contract once.
func DefaultCatalog() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = ParseCatalog(context.Background(), EmbeddedDocument())
	})
	return defaultCatalog, defaultErr
}
