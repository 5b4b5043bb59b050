package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kommunelab/lovassistent/internal/pkg/errcode"
	"github.com/kommunelab/lovassistent/internal/pkg/response"
	"github.com/kommunelab/lovassistent/internal/retrieval"
	"github.com/kommunelab/lovassistent/internal/service"
)

// SearchHandler exposes raw retrieval results, distances included, for
// debugging and relevance tuning.
type SearchHandler struct {
	retriever service.Retriever
}

func NewSearchHandler(retriever service.Retriever) *SearchHandler {
	return &SearchHandler{retriever: retriever}
}

type searchRequest struct {
	Prompt        string `json:"prompt"`
	LawID         string `json:"law_id"`
	KLaws         int    `json:"k_laws"`
	KParagraphs   int    `json:"k_paragraphs"`
	SkipLawSearch bool   `json:"skip_law_search"`
}

func (h *SearchHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	result, err := h.retriever.Retrieve(c.Request.Context(), req.Prompt, retrieval.Options{
		KLaws:         req.KLaws,
		KParagraphs:   req.KParagraphs,
		LawID:         req.LawID,
		SkipLawSearch: req.SkipLawSearch,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
