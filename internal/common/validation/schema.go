// internal/common/validation/schema.go
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// collectionSchemas holds the JSON schema for each document collection.
// The store validates every document against its collection schema before
// insert; the schemas encode structure only, not business rules.
var collectionSchemas = map[string]map[string]interface{}{
	"posts": {
		"type": "object",
		"properties": map[string]interface{}{
			"id":          map[string]interface{}{"type": "string"},
			"authorId":    map[string]interface{}{"type": "string", "minLength": 1},
			"authorName":  map[string]interface{}{"type": "string"},
			"title":       map[string]interface{}{"type": "string", "minLength": 1},
			"description": map[string]interface{}{"type": "string"},
			"postType": map[string]interface{}{
				"type": "string",
				"enum": []string{"PROBLEM", "SOLUTION", "GENERAL"},
			},
			"tags": map[string]interface{}{
				"type":  []string{"array", "null"},
				"items": map[string]interface{}{"type": "string"},
			},
			"applicationsCount": map[string]interface{}{"type": "integer", "minimum": 0},
			"createdAt":         map[string]interface{}{"type": "string"},
		},
		"required": []string{"authorId", "title", "postType"},
	},
	"applications": {
		"type": "object",
		"properties": map[string]interface{}{
			"id":            map[string]interface{}{"type": "string"},
			"postId":        map[string]interface{}{"type": "string", "minLength": 1},
			"postTitle":     map[string]interface{}{"type": "string"},
			"developerId":   map[string]interface{}{"type": "string", "minLength": 1},
			"developerName": map[string]interface{}{"type": "string"},
			"proposal":      map[string]interface{}{"type": "string", "minLength": 1},
			"status": map[string]interface{}{
				"type": "string",
				"enum": []string{"PENDING", "ACCEPTED", "REJECTED"},
			},
			"appliedAt": map[string]interface{}{"type": "string"},
		},
		"required": []string{"postId", "developerId", "proposal", "status"},
	},
	"pending_projects": {
		"type": "object",
		"properties": map[string]interface{}{
			"id":              map[string]interface{}{"type": "string"},
			"postId":          map[string]interface{}{"type": "string", "minLength": 1},
			"postTitle":       map[string]interface{}{"type": "string"},
			"postDescription": map[string]interface{}{"type": "string"},
			"authorId":        map[string]interface{}{"type": "string", "minLength": 1},
			"authorName":      map[string]interface{}{"type": "string"},
			"developerId":     map[string]interface{}{"type": "string", "minLength": 1},
			"developerName":   map[string]interface{}{"type": "string"},
			"applicationId":   map[string]interface{}{"type": "string", "minLength": 1},
			"status": map[string]interface{}{
				"type": "string",
				"enum": []string{"PENDING", "IN_PROGRESS", "COMPLETED", "CANCELLED"},
			},
			"acceptedAt":  map[string]interface{}{"type": "string"},
			"completedAt": map[string]interface{}{"type": "string"},
		},
		"required": []string{"postId", "authorId", "developerId", "applicationId", "status"},
	},
	"notifications": {
		"type": "object",
		"properties": map[string]interface{}{
			"id":     map[string]interface{}{"type": "string"},
			"userId": map[string]interface{}{"type": "string", "minLength": 1},
			"type": map[string]interface{}{
				"type": "string",
				"enum": []string{
					"APPLICATION", "APPLICATION_ACCEPTED", "APPLICATION_REJECTED",
					"NEW_APPLICATION", "GENERAL",
				},
			},
			"title":        map[string]interface{}{"type": "string"},
			"message":      map[string]interface{}{"type": "string"},
			"relatedId":    map[string]interface{}{"type": "string"},
			"read":         map[string]interface{}{"type": "boolean"},
			"dispatched":   map[string]interface{}{"type": "boolean"},
			"dispatchedAt": map[string]interface{}{"type": "string"},
			"createdAt":    map[string]interface{}{"type": "string"},
		},
		"required": []string{"userId", "type", "title"},
	},
}

// ValidateDocument checks a document against its collection schema.
// Collections without a registered schema are accepted as-is.
func ValidateDocument(collection string, doc map[string]interface{}) error {
	schemaMap, exists := collectionSchemas[collection]
	if !exists {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(schemaMap)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("document validation failed: %v", errs)
	}

	return nil
}

// KnownCollection reports whether a collection has a registered schema.
func KnownCollection(collection string) bool {
	_, exists := collectionSchemas[collection]
	return exists
}
