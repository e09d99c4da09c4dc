package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/edigest/internal/pathstore"
	"github.com/dgallion1/edigest/internal/pipeline"
)

// handleListDocuments lists all interchange files stored for a partner.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	partnerID := r.URL.Query().Get("partner_id")
	if err := validateID("partner_id", partnerID); err != nil {
		jsonError(w, err.Error()+" (query parameter)", http.StatusBadRequest)
		return
	}

	children, err := s.orchestrator.PathstoreClient().ListChildren(r.Context(), pipeline.DocumentsPrefix(partnerID), 200)
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// Only meta nodes describe a document.
	docs := []map[string]any{}
	for _, child := range children {
		if strings.HasSuffix(child.Key, ".meta") || strings.HasSuffix(child.Key, "/meta") {
			docs = append(docs, map[string]any{
				"key":   child.Key,
				"value": child.Value,
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// handleDeleteDocument deletes a document's interchanges, messages, records
// and dedup index entry.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	partnerID := r.URL.Query().Get("partner_id")
	if err := validateID("partner_id", partnerID); err != nil {
		jsonError(w, err.Error()+" (query parameter)", http.StatusBadRequest)
		return
	}
	if err := validateID("doc_id", docID); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	ps := s.orchestrator.PathstoreClient()
	docPrefix := pipeline.DocumentPrefix(partnerID, docID)

	// The hash lives in meta, so read it before the subtree goes.
	hash := contentHash(ctx, ps, docPrefix)

	if err := ps.DeleteNode(ctx, docPrefix, true); err != nil {
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusInternalServerError)
		return
	}

	hashIndexDeleted := false
	if hash != "" {
		if err := ps.DeleteNode(ctx, pipeline.HashIndexPath(partnerID, hash, docID), false); err != nil {
			s.log.Warn("hash index delete failed", "doc_id", docID, "error", err)
		} else {
			hashIndexDeleted = true
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":             docID,
		"deleted":            true,
		"hash_index_deleted": hashIndexDeleted,
	})
}

func contentHash(ctx context.Context, ps *pathstore.Client, docPrefix string) string {
	meta, err := ps.GetNode(ctx, docPrefix+"/meta")
	if err != nil || meta == nil {
		return ""
	}
	metaMap, ok := meta.Value.(map[string]any)
	if !ok {
		return ""
	}
	hash, _ := metaMap["content_hash"].(string)
	return hash
}
