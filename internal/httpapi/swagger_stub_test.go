//go:build !swagger

package httpapi

import (
	"net/http"
	"testing"
)

func TestMountSwagger_NoOpWithoutTag(t *testing.T) {
	h := NewMux(newMockService(), nil, nil)
	if w := doJSON(h, http.MethodGet, "/swagger/index.html", ""); w.Code != http.StatusNotFound {
		t.Fatalf("swagger mounted without build tag: %d", w.Code)
	}
}
