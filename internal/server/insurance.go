package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	insurancedomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/insurance/domain"
)

type createClaimBody struct {
	BillID      string `json:"bill_id"`
	PolicyID    string `json:"policy_id"`
	ClaimAmount int64  `json:"claim_amount"`
	Notes       string `json:"notes"`
}

func (s *Server) CreateClaim(c *gin.Context) {
	var body createClaimBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	claim, err := s.insuranceSvc.CreateClaim(c.Request.Context(), insurancedomain.CreateClaimRequest{
		BillID:      body.BillID,
		PolicyID:    body.PolicyID,
		ClaimAmount: body.ClaimAmount,
		Notes:       body.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, claim)
}

func (s *Server) GetClaimByID(c *gin.Context) {
	claim, err := s.insuranceSvc.GetClaim(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

// ListClaims filters by ?status=; the full claim inventory is reachable per
// patient or per policy instead.
func (s *Server) ListClaims(c *gin.Context) {
	status := strings.TrimSpace(c.Query("status"))
	if status == "" {
		AbortWithError(c, newValidationError("status", "invalid_claim_status", "status is required"))
		return
	}

	claims, err := s.insuranceSvc.ListClaimsByStatus(c.Request.Context(), insurancedomain.ClaimStatus(strings.ToUpper(status)))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claims": claims})
}

type updateClaimStatusBody struct {
	Status string `json:"status"`
}

func (s *Server) UpdateClaimStatus(c *gin.Context) {
	var body updateClaimStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	claim, err := s.insuranceSvc.UpdateClaimStatus(
		c.Request.Context(),
		c.Param("id"),
		insurancedomain.ClaimStatus(strings.ToUpper(strings.TrimSpace(body.Status))),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

type createSettlementBody struct {
	AmountSettled int64  `json:"amount_settled"`
	Remarks       string `json:"remarks"`
}

func (s *Server) CreateSettlement(c *gin.Context) {
	var body createSettlementBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	settlement, err := s.insuranceSvc.CreateSettlement(c.Request.Context(), insurancedomain.CreateSettlementRequest{
		ClaimID:       c.Param("id"),
		AmountSettled: body.AmountSettled,
		Remarks:       body.Remarks,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, settlement)
}

func (s *Server) ListSettlementsByClaim(c *gin.Context) {
	settlements, err := s.insuranceSvc.ListSettlementsByClaim(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settlements": settlements})
}

func (s *Server) ListClaimsByPatient(c *gin.Context) {
	claims, err := s.insuranceSvc.ListClaimsByPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claims": claims})
}

func (s *Server) ListClaimsByPolicy(c *gin.Context) {
	claims, err := s.insuranceSvc.ListClaimsByPolicy(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claims": claims})
}

func (s *Server) GetPolicyByID(c *gin.Context) {
	policy, err := s.insuranceSvc.GetPolicy(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, policy)
}
