package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	billingdomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/billing/domain"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/pkg/db/pagination"
)

type billItemBody struct {
	ServiceType string `json:"service_type"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

type createBillBody struct {
	PatientID      string         `json:"patient_id"`
	HospitalID     string         `json:"hospital_id"`
	AppointmentID  *string        `json:"appointment_id"`
	Items          []billItemBody `json:"items"`
	DiscountAmount int64          `json:"discount_amount"`
	TaxAmount      int64          `json:"tax_amount"`
	DueDate        *string        `json:"due_date"`
	Notes          string         `json:"notes"`
}

func (s *Server) CreateBill(c *gin.Context) {
	var body createBillBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	dueDate, err := parseOptionalDate(body.DueDate)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due date"))
		return
	}

	bill, err := s.billingSvc.Create(c.Request.Context(), billingdomain.CreateBillRequest{
		PatientID:      body.PatientID,
		HospitalID:     body.HospitalID,
		AppointmentID:  body.AppointmentID,
		Items:          toItemInputs(body.Items),
		DiscountAmount: body.DiscountAmount,
		TaxAmount:      body.TaxAmount,
		DueDate:        dueDate,
		Notes:          body.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bill)
}

type updateBillBody struct {
	Version        int64          `json:"version"`
	PatientID      string         `json:"patient_id"`
	HospitalID     string         `json:"hospital_id"`
	AppointmentID  *string        `json:"appointment_id"`
	Items          []billItemBody `json:"items"`
	DiscountAmount int64          `json:"discount_amount"`
	TaxAmount      int64          `json:"tax_amount"`
	Notes          string         `json:"notes"`
}

func (s *Server) UpdateBill(c *gin.Context) {
	var body updateBillBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	bill, err := s.billingSvc.Update(c.Request.Context(), billingdomain.UpdateBillRequest{
		BillID:         c.Param("id"),
		Version:        body.Version,
		PatientID:      body.PatientID,
		HospitalID:     body.HospitalID,
		AppointmentID:  body.AppointmentID,
		Items:          toItemInputs(body.Items),
		DiscountAmount: body.DiscountAmount,
		TaxAmount:      body.TaxAmount,
		Notes:          body.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, bill)
}

func (s *Server) GetBillByID(c *gin.Context) {
	bill, err := s.billingSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

type listBillsQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
}

func (s *Server) ListBills(c *gin.Context) {
	var query listBillsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.ListActive(c.Request.Context(), billingdomain.ListBillsRequest{
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
}

func (s *Server) ListBillsByPatient(c *gin.Context) {
	bills, err := s.billingSvc.ListByPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": bills})
}

func (s *Server) ListBillsByHospital(c *gin.Context) {
	bills, err := s.billingSvc.ListByHospital(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": bills})
}

type addBillItemBody struct {
	Version int64        `json:"version"`
	Item    billItemBody `json:"item"`
}

func (s *Server) AddBillItem(c *gin.Context) {
	var body addBillItemBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	bill, err := s.billingSvc.AddItem(c.Request.Context(), c.Param("id"), body.Version, billingdomain.ItemInput{
		ServiceType: body.Item.ServiceType,
		Description: body.Item.Description,
		Quantity:    body.Item.Quantity,
		UnitPrice:   body.Item.UnitPrice,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, bill)
}

func (s *Server) RemoveBillItem(c *gin.Context) {
	version, err := parseVersionQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	bill, err := s.billingSvc.RemoveItem(c.Request.Context(), c.Param("id"), version, c.Param("itemId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, bill)
}

func (s *Server) ListBillItems(c *gin.Context) {
	items, err := s.billingSvc.ListItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type billVersionBody struct {
	Version int64 `json:"version"`
}

func (s *Server) MarkBillSent(c *gin.Context) {
	var body billVersionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	bill, err := s.billingSvc.MarkSent(c.Request.Context(), c.Param("id"), body.Version)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

func (s *Server) CancelBill(c *gin.Context) {
	var body billVersionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	bill, err := s.billingSvc.Cancel(c.Request.Context(), c.Param("id"), body.Version)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

func (s *Server) DeactivateBill(c *gin.Context) {
	version, err := parseVersionQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.billingSvc.Deactivate(c.Request.Context(), c.Param("id"), version); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toItemInputs(items []billItemBody) []billingdomain.ItemInput {
	inputs := make([]billingdomain.ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, billingdomain.ItemInput{
			ServiceType: item.ServiceType,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return inputs
}

func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*value)
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &parsed, nil
	}
	parsed, err := time.Parse(dateOnlyLayout, trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
