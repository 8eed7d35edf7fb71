// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDocument_Post(t *testing.T) {
	doc := map[string]interface{}{
		"id":       "post-1",
		"authorId": "user-1",
		"title":    "Build a CSV importer",
		"postType": "PROBLEM",
		"tags":     nil, // older clients store null tags
	}
	assert.NoError(t, ValidateDocument("posts", doc))

	doc["postType"] = "NOT_A_TYPE"
	assert.Error(t, ValidateDocument("posts", doc))

	delete(doc, "authorId")
	assert.Error(t, ValidateDocument("posts", doc))
}

func TestValidateDocument_Application(t *testing.T) {
	doc := map[string]interface{}{
		"postId":      "post-1",
		"developerId": "dev-1",
		"proposal":    "I can take this on",
		"status":      "PENDING",
	}
	assert.NoError(t, ValidateDocument("applications", doc))

	doc["proposal"] = ""
	assert.Error(t, ValidateDocument("applications", doc))
}

func TestValidateDocument_UnknownCollectionPasses(t *testing.T) {
	assert.NoError(t, ValidateDocument("audit_log", map[string]interface{}{"anything": true}))
	assert.False(t, KnownCollection("audit_log"))
	assert.True(t, KnownCollection("notifications"))
}
