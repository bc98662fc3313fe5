package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/keyturn/keyturn/internal/contracts/infrastructure/storage"
	"github.com/keyturn/keyturn/internal/rentals/application/commands"
	"github.com/keyturn/keyturn/internal/rentals/application/queries"
	"github.com/keyturn/keyturn/internal/rentals/domain"
	"github.com/keyturn/keyturn/internal/rentals/domain/offer"
)

// maxEvidenceMemory bounds the in-memory portion of a multipart
// report-issue request.
const maxEvidenceMemory = 32 << 20

// VerificationHandler handles move-in verification API requests.
// Authentication happens upstream; the acting user arrives in the
// X-User-ID header and admin routes are assumed to be gated by the
// API gateway's role check.
type VerificationHandler struct {
	verifyMoveIn        *commands.VerifyMoveInHandler
	reportIssue         *commands.ReportIssueHandler
	approveCancellation *commands.ApproveCancellationHandler
	rejectCancellation  *commands.RejectCancellationHandler
	getStatus           *queries.GetVerificationStatusHandler
	getLatestPaid       *queries.GetLatestPaidStatusHandler
	files               *storage.FileStore
	logger              *slog.Logger
}

// VerificationHandlerConfig holds dependencies for the verification handler.
type VerificationHandlerConfig struct {
	VerifyMoveIn        *commands.VerifyMoveInHandler
	ReportIssue         *commands.ReportIssueHandler
	ApproveCancellation *commands.ApproveCancellationHandler
	RejectCancellation  *commands.RejectCancellationHandler
	GetStatus           *queries.GetVerificationStatusHandler
	GetLatestPaid       *queries.GetLatestPaidStatusHandler
	Files               *storage.FileStore
	Logger              *slog.Logger
}

// NewVerificationHandler creates a new verification handler.
func NewVerificationHandler(cfg VerificationHandlerConfig) *VerificationHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &VerificationHandler{
		verifyMoveIn:        cfg.VerifyMoveIn,
		reportIssue:         cfg.ReportIssue,
		approveCancellation: cfg.ApproveCancellation,
		rejectCancellation:  cfg.RejectCancellation,
		getStatus:           cfg.GetStatus,
		getLatestPaid:       cfg.GetLatestPaid,
		files:               cfg.Files,
		logger:              cfg.Logger,
	}
}

// GetStatus handles GET /api/v1/offers/{offerID}/status
func (h *VerificationHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	offerID, ok := parseUUIDPath(w, r, "offerID")
	if !ok {
		return
	}

	dto, err := h.getStatus.Handle(r.Context(), queries.GetVerificationStatusQuery{OfferID: offerID})
	if err != nil {
		h.writeDomainError(w, r, err, "failed to get verification status")
		return
	}

	writeJSON(w, http.StatusOK, dto)
}

// VerifyMoveIn handles POST /api/v1/offers/{offerID}/verify
func (h *VerificationHandler) VerifyMoveIn(w http.ResponseWriter, r *http.Request) {
	offerID, ok := parseUUIDPath(w, r, "offerID")
	if !ok {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	o, err := h.verifyMoveIn.Handle(r.Context(), commands.VerifyMoveInCommand{
		OfferID: offerID,
		UserID:  userID,
	})
	if err != nil {
		h.writeDomainError(w, r, err, "failed to verify move-in")
		return
	}

	writeJSON(w, http.StatusOK, successResponse(offerDTO(o)))
}

// ReportIssue handles POST /api/v1/offers/{offerID}/report-issue
//
// Multipart form: text fields "reason" and "notes", files under
// "moveInEvidence". Evidence files are stored before the state
// transition; a failed transition leaves already stored files behind
// as orphans, which is acceptable because nothing references them.
func (h *VerificationHandler) ReportIssue(w http.ResponseWriter, r *http.Request) {
	offerID, ok := parseUUIDPath(w, r, "offerID")
	if !ok {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxEvidenceMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	reason := r.FormValue("reason")
	notes := r.FormValue("notes")

	var evidence []string
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["moveInEvidence"] {
			relPath, err := h.saveEvidenceFile(offerID, header)
			if err != nil {
				h.logger.Error("failed to store evidence file",
					"offer_id", offerID, "filename", header.Filename, "error", err)
				writeError(w, http.StatusInternalServerError, "Failed to store evidence")
				return
			}
			evidence = append(evidence, relPath)
		}
	}

	o, err := h.reportIssue.Handle(r.Context(), commands.ReportIssueCommand{
		OfferID:  offerID,
		UserID:   userID,
		Reason:   reason,
		Notes:    notes,
		Evidence: evidence,
	})
	if err != nil {
		h.writeDomainError(w, r, err, "failed to report move-in issue")
		return
	}

	writeJSON(w, http.StatusOK, successResponse(offerDTO(o)))
}

// GetLatestPaidStatus handles GET /api/v1/property/{propertyID}/latest-paid-status
func (h *VerificationHandler) GetLatestPaidStatus(w http.ResponseWriter, r *http.Request) {
	propertyID, ok := parseUUIDPath(w, r, "propertyID")
	if !ok {
		return
	}

	dto, err := h.getLatestPaid.Handle(r.Context(), queries.GetLatestPaidStatusQuery{PropertyID: propertyID})
	if err != nil {
		h.writeDomainError(w, r, err, "failed to get latest paid status")
		return
	}

	// No paid offer is a null payload, not an error.
	if dto == nil {
		writeJSON(w, http.StatusOK, successResponse(nil))
		return
	}
	writeJSON(w, http.StatusOK, successResponse(dto))
}

// ApproveCancellation handles POST /api/v1/offers/{offerID}/admin/approve
func (h *VerificationHandler) ApproveCancellation(w http.ResponseWriter, r *http.Request) {
	offerID, ok := parseUUIDPath(w, r, "offerID")
	if !ok {
		return
	}
	adminID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body adminDecisionRequest
	if err := decodeJSONBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	o, err := h.approveCancellation.Handle(r.Context(), commands.ApproveCancellationCommand{
		OfferID: offerID,
		AdminID: adminID,
		Notes:   body.Notes,
	})
	if err != nil {
		h.writeDomainError(w, r, err, "failed to approve cancellation")
		return
	}

	writeJSON(w, http.StatusOK, successResponse(offerDTO(o)))
}

// RejectCancellation handles POST /api/v1/offers/{offerID}/admin/reject
func (h *VerificationHandler) RejectCancellation(w http.ResponseWriter, r *http.Request) {
	offerID, ok := parseUUIDPath(w, r, "offerID")
	if !ok {
		return
	}
	adminID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body adminDecisionRequest
	if err := decodeJSONBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	o, err := h.rejectCancellation.Handle(r.Context(), commands.RejectCancellationCommand{
		OfferID: offerID,
		AdminID: adminID,
		Notes:   body.Notes,
	})
	if err != nil {
		h.writeDomainError(w, r, err, "failed to reject cancellation")
		return
	}

	writeJSON(w, http.StatusOK, successResponse(offerDTO(o)))
}

func (h *VerificationHandler) saveEvidenceFile(offerID uuid.UUID, header *multipart.FileHeader) (string, error) {
	f, err := header.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	relPath := fmt.Sprintf("move-in/%s/%s_%s", offerID, uuid.New(), path.Base(header.Filename))
	return h.files.Save(relPath, f)
}

// writeDomainError maps domain errors onto the HTTP error taxonomy.
// Unexpected errors degrade to a generic message without leaking
// internal detail.
func (h *VerificationHandler) writeDomainError(w http.ResponseWriter, r *http.Request, err error, logMsg string) {
	switch {
	case errors.Is(err, offer.ErrOfferNotFound), errors.Is(err, domain.ErrRentalRequestNotFound):
		writeError(w, http.StatusNotFound, "Offer not found")
	case errors.Is(err, offer.ErrNotOfferTenant):
		writeError(w, http.StatusUnauthorized, "You are not allowed to act on this offer")
	case errors.Is(err, offer.ErrReasonRequired):
		writeError(w, http.StatusBadRequest, "A reason is required")
	case errors.Is(err, offer.ErrOfferCancelled):
		writeError(w, http.StatusConflict, "Offer is already cancelled")
	default:
		h.logger.Error(logMsg, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong")
	}
}

type adminDecisionRequest struct {
	Notes string `json:"notes"`
}

// offerResponse is the updated-offer payload returned by write
// operations.
type offerResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Status             string     `json:"status"`
	VerificationStatus string     `json:"verificationStatus"`
	VerificationDate   *time.Time `json:"verificationDate"`
	CancellationReason string     `json:"cancellationReason"`
	Evidence           []string   `json:"evidence"`
	VerificationNotes  string     `json:"verificationNotes"`
}

func offerDTO(o *offer.Offer) offerResponse {
	evidence := o.CancellationEvidence()
	if evidence == nil {
		evidence = []string{}
	}
	return offerResponse{
		ID:                 o.ID(),
		Status:             string(o.Status()),
		VerificationStatus: string(o.VerificationStatus()),
		VerificationDate:   o.VerificationDate(),
		CancellationReason: o.CancellationReason(),
		Evidence:           evidence,
		VerificationNotes:  o.VerificationNotes(),
	}
}

func successResponse(data any) map[string]any {
	return map[string]any{"success": true, "data": data}
}

func parseUUIDPath(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// requireUser extracts the acting user set by the upstream auth layer.
func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := uuid.Parse(r.Header.Get("X-User-ID"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Missing or invalid user identity")
		return uuid.Nil, false
	}
	return userID, true
}

func decodeJSONBody(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(dst)
}
