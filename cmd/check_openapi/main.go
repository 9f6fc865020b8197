package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const errorResponseRef = "#/components/schemas/ErrorResponse"

type openAPIDoc struct {
	Paths      map[string]map[string]operation `yaml:"paths"`
	Components struct {
		Schemas   map[string]schema   `yaml:"schemas"`
		Responses map[string]response `yaml:"responses"`
	} `yaml:"components"`
}

type operation struct {
	OperationID string              `yaml:"operationId"`
	Responses   map[string]response `yaml:"responses"`
}

type response struct {
	Ref     string               `yaml:"$ref"`
	Content map[string]mediaType `yaml:"content"`
}

type mediaType struct {
	Schema schema `yaml:"schema"`
}

type schema struct {
	Type       string            `yaml:"type"`
	Ref        string            `yaml:"$ref"`
	Properties map[string]schema `yaml:"properties"`
	Required   []string          `yaml:"required"`
	Items      *schema           `yaml:"items"`
}

type schemaShape struct {
	Type       string
	Required   []string
	Properties map[string]propertyShape
}

type propertyShape struct {
	Type     string
	ItemsRef string
}

var httpMethods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"patch": true, "head": true, "options": true,
}

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <web-openapi.yaml> <archive-openapi.yaml>\n", os.Args[0])
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2]); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	fmt.Println("OpenAPI consistency check passed.")
}

func run(webPath, archivePath string) error {
	webDoc, err := loadDoc(webPath)
	if err != nil {
		return err
	}
	archiveDoc, err := loadDoc(archivePath)
	if err != nil {
		return err
	}
	return checkDocs(webDoc, archiveDoc)
}

// checkDocs requires both services to publish the same error envelope and
// every error status to use it.
func checkDocs(webDoc, archiveDoc openAPIDoc) error {
	webErr, err := getSchema(webDoc, "ErrorResponse")
	if err != nil {
		return fmt.Errorf("web: %w", err)
	}
	archiveErr, err := getSchema(archiveDoc, "ErrorResponse")
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if err := validateErrorResponse("web", webErr); err != nil {
		return err
	}
	if err := validateErrorResponse("archive", archiveErr); err != nil {
		return err
	}
	if err := ensureSameShape("ErrorResponse", shapeFromSchema(webErr), shapeFromSchema(archiveErr)); err != nil {
		return err
	}
	if err := validateOperations("web", webDoc); err != nil {
		return err
	}
	return validateOperations("archive", archiveDoc)
}

func loadDoc(path string) (openAPIDoc, error) {
	var doc openAPIDoc
	raw, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func getSchema(doc openAPIDoc, name string) (schema, error) {
	if doc.Components.Schemas == nil {
		return schema{}, errors.New("components.schemas missing")
	}
	s, ok := doc.Components.Schemas[name]
	if !ok {
		return schema{}, fmt.Errorf("schema %q missing", name)
	}
	return s, nil
}

func validateErrorResponse(scope string, s schema) error {
	if s.Type != "object" {
		return fmt.Errorf("%s ErrorResponse must be object", scope)
	}
	required := makeSet(s.Required)
	for _, field := range []string{"error", "code"} {
		if !required[field] {
			return fmt.Errorf("%s ErrorResponse.required must include %q", scope, field)
		}
	}
	for _, field := range []string{"error", "code", "requestId"} {
		prop, ok := s.Properties[field]
		if !ok || prop.Type != "string" {
			return fmt.Errorf("%s ErrorResponse.%s must be string", scope, field)
		}
	}
	return nil
}

// validateOperations checks operation ids are present and unique, and that
// 4xx/5xx responses resolve to ErrorResponse.
func validateOperations(scope string, doc openAPIDoc) error {
	if len(doc.Paths) == 0 {
		return fmt.Errorf("%s: paths missing", scope)
	}
	seen := make(map[string]string)
	paths := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		for method, op := range doc.Paths[p] {
			if !httpMethods[method] {
				continue
			}
			where := fmt.Sprintf("%s %s %s", scope, strings.ToUpper(method), p)
			if strings.TrimSpace(op.OperationID) == "" {
				return fmt.Errorf("%s: operationId missing", where)
			}
			if prev, ok := seen[op.OperationID]; ok {
				return fmt.Errorf("%s: operationId %q already used by %s", where, op.OperationID, prev)
			}
			seen[op.OperationID] = where
			if len(op.Responses) == 0 {
				return fmt.Errorf("%s: responses missing", where)
			}
			for status, resp := range op.Responses {
				if !isErrorStatus(status) {
					continue
				}
				if !errorResponseUsed(doc, resp) {
					return fmt.Errorf("%s: response %s must use ErrorResponse", where, status)
				}
			}
		}
	}
	return nil
}

func isErrorStatus(status string) bool {
	return strings.HasPrefix(status, "4") || strings.HasPrefix(status, "5")
}

func errorResponseUsed(doc openAPIDoc, resp response) bool {
	if ref := strings.TrimSpace(resp.Ref); ref != "" {
		name := strings.TrimPrefix(ref, "#/components/responses/")
		if name == ref {
			return false
		}
		shared, ok := doc.Components.Responses[name]
		if !ok {
			return false
		}
		resp = shared
	}
	media, ok := resp.Content["application/json"]
	if !ok {
		return false
	}
	return strings.TrimSpace(media.Schema.Ref) == errorResponseRef
}

func shapeFromSchema(s schema) schemaShape {
	out := schemaShape{
		Type:       s.Type,
		Required:   append([]string(nil), s.Required...),
		Properties: make(map[string]propertyShape, len(s.Properties)),
	}
	sort.Strings(out.Required)
	for name, prop := range s.Properties {
		shape := propertyShape{Type: prop.Type}
		if prop.Items != nil {
			shape.ItemsRef = strings.TrimSpace(prop.Items.Ref)
		}
		out.Properties[name] = shape
	}
	return out
}

func ensureSameShape(name string, left, right schemaShape) error {
	if left.Type != right.Type {
		return fmt.Errorf("%s type mismatch: %q vs %q", name, left.Type, right.Type)
	}
	if strings.Join(left.Required, ",") != strings.Join(right.Required, ",") {
		return fmt.Errorf("%s required mismatch: %v vs %v", name, left.Required, right.Required)
	}
	if len(left.Properties) != len(right.Properties) {
		return fmt.Errorf("%s property count mismatch: %d vs %d", name, len(left.Properties), len(right.Properties))
	}
	for key, leftProp := range left.Properties {
		rightProp, ok := right.Properties[key]
		if !ok {
			return fmt.Errorf("%s missing property %q in archive schema", name, key)
		}
		if leftProp != rightProp {
			return fmt.Errorf("%s property %q mismatch: %+v vs %+v", name, key, leftProp, rightProp)
		}
	}
	return nil
}

func makeSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out[item] = true
	}
	return out
}
