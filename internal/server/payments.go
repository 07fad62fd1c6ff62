package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	paymentdomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/payment/domain"
	refunddomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/refund/domain"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/pkg/db/pagination"
)

type processPaymentBody struct {
	BillID      string `json:"bill_id"`
	Amount      int64  `json:"amount"`
	Method      string `json:"method"`
	ReferenceNo string `json:"reference_no"`
}

func (s *Server) ProcessPayment(c *gin.Context) {
	var body processPaymentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	payment, err := s.paymentSvc.Process(c.Request.Context(), paymentdomain.ProcessPaymentRequest{
		BillID:      body.BillID,
		Amount:      body.Amount,
		Method:      body.Method,
		ReferenceNo: body.ReferenceNo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

func (s *Server) VoidPayment(c *gin.Context) {
	payment, err := s.paymentSvc.Void(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (s *Server) GetPaymentByID(c *gin.Context) {
	payment, err := s.paymentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

type listPaymentsQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
	Paginated bool   `form:"paginated"`
}

func (s *Server) ListPaymentsByBill(c *gin.Context) {
	var query listPaymentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if query.Paginated || query.PageToken != "" || query.PageSize > 0 {
		resp, err := s.paymentSvc.ListByBillPaged(c.Request.Context(), paymentdomain.ListPaymentsRequest{
			BillID: c.Param("id"),
			Pagination: pagination.Pagination{
				PageToken: strings.TrimSpace(query.PageToken),
				PageSize:  query.PageSize,
			},
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	payments, err := s.paymentSvc.ListByBill(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

func (s *Server) ListPaymentsByPatient(c *gin.Context) {
	payments, err := s.paymentSvc.ListByPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

func (s *Server) ListPaymentsByHospital(c *gin.Context) {
	payments, err := s.paymentSvc.ListByHospital(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

type processRefundBody struct {
	BillID string `json:"bill_id"`
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

func (s *Server) ProcessRefund(c *gin.Context) {
	var body processRefundBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	refund, err := s.refundSvc.Process(c.Request.Context(), refunddomain.ProcessRefundRequest{
		BillID: body.BillID,
		Amount: body.Amount,
		Reason: body.Reason,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, refund)
}

func (s *Server) ListRefundsByBill(c *gin.Context) {
	refunds, err := s.refundSvc.ListByBill(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refunds": refunds})
}
