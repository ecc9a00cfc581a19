package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/pipeline"
)

// formPage is the data rendered by index.html.tmpl.
type formPage struct {
	Values     map[string]string
	LandCovers []domain.LandCover
	SoilTypes  []domain.SoilType
	Errors     []fieldError
	Failure    string
	Result     *domain.Assessment
}

func newFormPage() formPage {
	return formPage{
		Values: map[string]string{
			"infrastructure_present": "0",
			"historical_floods":      "0",
			"land_cover":             string(domain.LandCoverAgricultural),
			"soil_type":              string(domain.SoilTypeClay),
		},
		LandCovers: domain.LandCovers,
		SoilTypes:  domain.SoilTypes,
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html.tmpl", newFormPage())
}

// handleFormSubmit assesses a form post and re-renders the page with either
// the verdict or the rejected fields. Submitted values are kept.
func (s *Server) handleFormSubmit(c *gin.Context) {
	page := newFormPage()
	if err := c.Request.ParseForm(); err == nil {
		for k := range c.Request.PostForm {
			page.Values[k] = c.Request.PostForm.Get(k)
		}
	}

	if blank := blankFields(c.Request.PostForm); len(blank) > 0 {
		s.assessor.Reject(pipeline.SourceForm, pipeline.ReasonMalformed)
		page.Errors = blank
		c.HTML(http.StatusBadRequest, "index.html.tmpl", page)
		return
	}

	var in assessmentInput
	if err := c.ShouldBindWith(&in, binding.Form); err != nil {
		s.assessor.Reject(pipeline.SourceForm, rejectReason(err))
		page.Errors, _ = describeErrors(err)
		if len(page.Errors) == 0 {
			page.Failure = "The form could not be read. Check that every field holds a number."
		}
		c.HTML(http.StatusBadRequest, "index.html.tmpl", page)
		return
	}

	assessment, err := s.assessor.Assess(c.Request.Context(), pipeline.SourceForm, in.request())
	if err != nil {
		if fields, ok := describeErrors(err); ok {
			page.Errors = fields
			c.HTML(http.StatusBadRequest, "index.html.tmpl", page)
			return
		}
		page.Failure = "The assessment could not be completed. Please try again later."
		c.HTML(http.StatusInternalServerError, "index.html.tmpl", page)
		return
	}

	page.Result = &assessment
	c.HTML(http.StatusOK, "index.html.tmpl", page)
}

func (s *Server) handleCreateAssessment(c *gin.Context) {
	var in assessmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.assessor.Reject(pipeline.SourceAPI, rejectReason(err))
		if fields, ok := describeErrors(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": fields})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid payload: %v", err)})
		return
	}

	assessment, err := s.assessor.Assess(c.Request.Context(), pipeline.SourceAPI, in.request())
	if err != nil {
		if fields, ok := describeErrors(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": fields})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "assessment failed"})
		return
	}

	c.JSON(http.StatusCreated, assessment)
}

func handleFeatures(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"features":    domain.FeatureNames(),
		"land_covers": domain.LandCovers,
		"soil_types":  domain.SoilTypes,
	})
}
