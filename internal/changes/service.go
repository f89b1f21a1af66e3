package changes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aarav-aiphi/Backend/internal/listings"
	"github.com/aarav-aiphi/Backend/pkg/assets"
	"github.com/aarav-aiphi/Backend/pkg/db/models"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/aarav-aiphi/Backend/pkg/logger"
	"github.com/aarav-aiphi/Backend/pkg/mail"
	"github.com/aarav-aiphi/Backend/pkg/metrics"
	"github.com/aarav-aiphi/Backend/pkg/pagination"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Service runs the moderated change workflow for listings.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*Receipt, error)
	SubmitUpdate(ctx context.Context, input UpdateInput) (*Receipt, error)
	SubmitStatusChange(ctx context.Context, requestedBy, targetID uuid.UUID, status enums.ListingStatus, instructions string) (*Receipt, error)
	SubmitDelete(ctx context.Context, requestedBy, targetID uuid.UUID) (*Receipt, error)
	SubmitBulkCSV(ctx context.Context, requestedBy uuid.UUID, csv io.Reader) (*BulkResult, error)
	Resolve(ctx context.Context, id, reviewer uuid.UUID, decision Decision) (*Resolution, error)
	ListPending(ctx context.Context, params pagination.Params) (*ListResult, error)
	ListMine(ctx context.Context, requestedBy uuid.UUID, params pagination.Params) (*ListResult, error)
}

// SubmitInput is a proposed mutation awaiting review.
type SubmitInput struct {
	Action      enums.ChangeAction
	Collection  enums.ChangeCollection
	TargetID    *uuid.UUID
	Payload     Payload
	RequestedBy uuid.UUID
}

// UpdateInput is a proposed update whose images are staged in temporary storage.
type UpdateInput struct {
	RequestedBy uuid.UUID
	TargetID    uuid.UUID
	Fields      listings.Fields
	Logo        *assets.File
	Thumbnail   *assets.File
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
}

type notifier interface {
	Notify(ctx context.Context, msg mail.Message)
}

// ServiceParams bundles the dependencies of the change workflow.
type ServiceParams struct {
	Repo     Repository
	Listings listings.Repository
	Users    userLookup
	Tx       txRunner
	Assets   assets.Store
	Notifier notifier
	Metrics  *metrics.ChangeMetrics
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	repo     Repository
	listings listings.Repository
	users    userLookup
	tx       txRunner
	assets   assets.Store
	notifier notifier
	metrics  *metrics.ChangeMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the change workflow. Metrics and Now are optional.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("pending changes repository required")
	}
	if params.Listings == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user lookup required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Assets == nil {
		return nil, fmt.Errorf("asset store required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		listings: params.Listings,
		users:    params.Users,
		tx:       params.Tx,
		assets:   params.Assets,
		notifier: params.Notifier,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*Receipt, error) {
	if err := validateSubmission(input); err != nil {
		return nil, err
	}
	if input.TargetID != nil {
		if _, err := s.listings.FindByID(ctx, *input.TargetID); err != nil {
			return nil, listings.MapWriteError(err, "load target listing")
		}
	}

	data, err := EncodePayload(input.Payload)
	if err != nil {
		return nil, err
	}
	change := &models.PendingChange{
		Action:       input.Action,
		Collection:   input.Collection,
		TargetID:     input.TargetID,
		ProposedData: data,
		RequestedBy:  input.RequestedBy,
	}
	if err := s.repo.Create(ctx, change); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist pending change")
	}

	s.metrics.IncSubmitted(input.Action.String())
	ctx = s.logg.WithChangeID(ctx, change.ID.String())
	s.logg.Info(s.logg.WithField(ctx, "action", input.Action.String()), "pending change submitted")
	return &Receipt{Message: submittedMessage(input.Action), PendingChangeID: change.ID}, nil
}

func validateSubmission(input SubmitInput) error {
	if !input.Collection.IsValid() {
		return fieldError("collection", "unsupported collection")
	}
	if !input.Action.IsValid() {
		return fieldError("action", "action must be one of create, update, delete, status_change")
	}
	if input.RequestedBy == uuid.Nil {
		return fieldError("requestedBy", "requestedBy is required")
	}

	if input.Action == enums.ChangeActionCreate {
		if input.TargetID != nil {
			return fieldError("targetId", "create requests must not reference an existing agent")
		}
	} else if input.TargetID == nil || *input.TargetID == uuid.Nil {
		return fieldError("targetId", "targetId is required")
	}

	if input.Action == enums.ChangeActionDelete {
		if input.Payload != nil {
			if _, ok := input.Payload.(DeletePayload); !ok {
				return fieldError("proposedData", "delete requests must not carry proposed data")
			}
		}
		return nil
	}
	if input.Payload == nil {
		return fieldError("proposedData", "proposedData is required")
	}
	if input.Payload.Action() != input.Action {
		return fieldError("proposedData", "proposedData does not match action")
	}
	return input.Payload.Validate()
}

func submittedMessage(action enums.ChangeAction) string {
	switch action {
	case enums.ChangeActionCreate:
		return "Agent creation request submitted for approval."
	case enums.ChangeActionUpdate:
		return "Agent update request submitted for superadmin approval."
	case enums.ChangeActionDelete:
		return "Agent deletion request submitted for approval."
	default:
		return "Agent status change request submitted for approval."
	}
}

func (s *service) SubmitUpdate(ctx context.Context, input UpdateInput) (*Receipt, error) {
	target := input.TargetID
	payload := UpdatePayload{Fields: input.Fields}
	if payload.Fields.IsEmpty() && input.Logo == nil && input.Thumbnail == nil {
		return nil, fieldError("proposedData", "update must change at least one field")
	}
	if err := payload.Fields.Validate(); err != nil {
		return nil, err
	}
	if target == uuid.Nil {
		return nil, fieldError("targetId", "targetId is required")
	}
	if _, err := s.listings.FindByID(ctx, target); err != nil {
		return nil, listings.MapWriteError(err, "load target listing")
	}

	if input.Logo != nil {
		asset, err := s.stage(ctx, *input.Logo)
		if err != nil {
			return nil, err
		}
		payload.LogoTempURL, payload.LogoTempPublicID = asset.URL, asset.PublicID
	}
	if input.Thumbnail != nil {
		asset, err := s.stage(ctx, *input.Thumbnail)
		if err != nil {
			s.cleanup(ctx, payload.TempImages.Keys())
			return nil, err
		}
		payload.ThumbnailTempURL, payload.ThumbnailTempPublicID = asset.URL, asset.PublicID
	}

	receipt, err := s.Submit(ctx, SubmitInput{
		Action:      enums.ChangeActionUpdate,
		Collection:  enums.ChangeCollectionAgents,
		TargetID:    &target,
		Payload:     payload,
		RequestedBy: input.RequestedBy,
	})
	if err != nil {
		s.cleanup(ctx, payload.TempImages.Keys())
		return nil, err
	}
	return receipt, nil
}

func (s *service) stage(ctx context.Context, file assets.File) (assets.Asset, error) {
	asset, err := assets.UploadFile(ctx, s.assets, assets.FolderAgentsTemp, file)
	if err != nil {
		return assets.Asset{}, dependencyError(err, "stage image")
	}
	return asset, nil
}

func (s *service) SubmitStatusChange(ctx context.Context, requestedBy, targetID uuid.UUID, status enums.ListingStatus, instructions string) (*Receipt, error) {
	return s.Submit(ctx, SubmitInput{
		Action:      enums.ChangeActionStatusChange,
		Collection:  enums.ChangeCollectionAgents,
		TargetID:    &targetID,
		Payload:     NewStatusChange(status, instructions),
		RequestedBy: requestedBy,
	})
}

func (s *service) SubmitDelete(ctx context.Context, requestedBy, targetID uuid.UUID) (*Receipt, error) {
	return s.Submit(ctx, SubmitInput{
		Action:      enums.ChangeActionDelete,
		Collection:  enums.ChangeCollectionAgents,
		TargetID:    &targetID,
		RequestedBy: requestedBy,
	})
}

func (s *service) SubmitBulkCSV(ctx context.Context, requestedBy uuid.UUID, csv io.Reader) (*BulkResult, error) {
	if requestedBy == uuid.Nil {
		return nil, fieldError("requestedBy", "requestedBy is required")
	}
	if csv == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "No CSV data provided.")
	}
	rows, failures, err := parseBulkCSV(csv)
	if err != nil {
		return nil, err
	}
	if failures == nil {
		failures = []BulkFailure{}
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "No valid agent data found in CSV.").
			WithDetails(map[string]any{"failed": failures})
	}

	batch := make([]*models.PendingChange, 0, len(rows))
	for _, row := range rows {
		data, err := EncodePayload(row.payload)
		if err != nil {
			return nil, err
		}
		batch = append(batch, &models.PendingChange{
			Action:       enums.ChangeActionCreate,
			Collection:   enums.ChangeCollectionAgents,
			ProposedData: data,
			RequestedBy:  requestedBy,
		})
	}
	if err := s.repo.CreateMany(ctx, batch); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist bulk pending changes")
	}
	for range batch {
		s.metrics.IncSubmitted(enums.ChangeActionCreate.String())
	}

	return &BulkResult{
		Message:   fmt.Sprintf("%d agents upload requests submitted for approval.", len(batch)),
		Submitted: len(batch),
		Failed:    failures,
	}, nil
}

// Resolve approves or rejects a pending change. The status transition, image
// promotion and listing mutation commit together; a change that is missing or
// already resolved yields NotFound and nothing is mutated.
func (s *service) Resolve(ctx context.Context, id, reviewer uuid.UUID, decision Decision) (*Resolution, error) {
	if id == uuid.Nil {
		return nil, fieldError("id", "change id is required")
	}
	if reviewer == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "reviewer identity missing")
	}
	if decision.Verdict != VerdictApprove && decision.Verdict != VerdictReject {
		return nil, fieldError("decision", "decision must be approve or reject")
	}
	ctx = s.logg.WithChangeID(ctx, id.String())

	var (
		change   *models.PendingChange
		payload  Payload
		listing  *models.Listing
		promoted promotion
		lost     bool
	)
	now := s.now().UTC()

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				lost = true
				return pkgerrors.New(pkgerrors.CodeNotFound, notPendingMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pending change")
		}
		next, err := Transition(found.Status, decision.Verdict)
		if err != nil {
			lost = pkgerrors.Is(err, pkgerrors.CodeNotFound)
			return err
		}

		reason := decision.rejectionReason()
		ok, err := repo.MarkResolved(ctx, id, resolvedFields{
			Status:          next,
			ReviewedBy:      reviewer,
			ReviewedAt:      now,
			RejectionReason: reason,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve pending change")
		}
		if !ok {
			lost = true
			return pkgerrors.New(pkgerrors.CodeNotFound, notPendingMessage)
		}
		found.Status = next
		found.ReviewedBy = &reviewer
		found.ReviewedAt = &now
		found.RejectionReason = reason
		found.UpdatedAt = now
		change = found

		if decision.Verdict == VerdictReject {
			if p, err := DecodePayload(found.Action, found.ProposedData); err == nil {
				payload = p
			}
			return nil
		}

		payload, err = DecodePayload(found.Action, found.ProposedData)
		if err != nil {
			return err
		}
		listing, promoted, err = s.apply(ctx, s.listings.WithTx(tx), found, payload)
		return err
	})
	if err != nil {
		if lost {
			s.metrics.IncConflict()
		}
		s.cleanup(ctx, promoted.written)
		return nil, err
	}

	consumed := promoted.consumed
	if decision.Verdict == VerdictReject && payload != nil {
		consumed = tempImagesOf(payload).Keys()
	}
	s.cleanup(ctx, consumed)
	s.metrics.IncResolved(change.Action.String(), string(decision.Verdict))
	s.notify(ctx, change, payload, listing)

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"action":   change.Action.String(),
		"decision": string(decision.Verdict),
	}), "pending change resolved")

	res := &Resolution{Change: toDTO(change)}
	if decision.Verdict == VerdictApprove {
		res.Message = "Change approved and applied successfully"
		res.Listing = listings.FromModel(listing)
	} else {
		res.Message = "Change request rejected successfully"
	}
	return res, nil
}

// apply performs an approved change against the listings table. It returns the
// affected listing and the objects touched while promoting staged images.
func (s *service) apply(ctx context.Context, repo listings.Repository, change *models.PendingChange, payload Payload) (*models.Listing, promotion, error) {
	switch p := payload.(type) {
	case CreatePayload:
		fields := p.Fields
		id := uuid.New()
		promoted, err := s.promote(ctx, &fields, p.TempImages, id)
		if err != nil {
			return nil, promoted, err
		}
		listing := fields.ToModel()
		listing.ID = id
		if err := repo.Create(ctx, listing); err != nil {
			return nil, promoted, listings.MapWriteError(err, "create listing")
		}
		return listing, promoted, nil

	case UpdatePayload:
		fields := p.Fields
		promoted, err := s.promote(ctx, &fields, p.TempImages, *change.TargetID)
		if err != nil {
			return nil, promoted, err
		}
		listing, err := repo.Update(ctx, *change.TargetID, fields.Columns())
		if err != nil {
			return nil, promoted, listings.MapWriteError(err, "update listing")
		}
		return listing, promoted, nil

	case StatusChangePayload:
		listing, err := repo.Update(ctx, *change.TargetID, map[string]any{"status": p.Status})
		if err != nil {
			return nil, promotion{}, listings.MapWriteError(err, "change listing status")
		}
		return listing, promotion{}, nil

	case DeletePayload:
		listing, err := repo.Delete(ctx, *change.TargetID)
		if err != nil {
			return nil, promotion{}, listings.MapWriteError(err, "delete listing")
		}
		return listing, promotion{}, nil

	default:
		return nil, promotion{}, pkgerrors.New(pkgerrors.CodeInternal, "unsupported pending change payload")
	}
}

// promotion records the temp keys copied out of staging and the permanent keys
// written for them.
type promotion struct {
	consumed []string
	written  []string
}

// promote copies staged images under the listing's folder and points fields at
// them. Temp objects are removed only after the resolution commits; written keys
// are removed if it does not.
func (s *service) promote(ctx context.Context, fields *listings.Fields, temps TempImages, listingID uuid.UUID) (promotion, error) {
	var out promotion
	for _, img := range []struct {
		kind    string
		tempKey string
		target  **string
	}{
		{"logo", temps.LogoTempPublicID, &fields.Logo},
		{"thumbnail", temps.ThumbnailTempPublicID, &fields.Thumbnail},
	} {
		if img.tempKey == "" {
			continue
		}
		asset, err := s.assets.Copy(ctx, img.tempKey, assets.PromotedKey(listingID, img.kind, img.tempKey))
		if err != nil {
			return out, dependencyError(err, "promote "+img.kind)
		}
		*img.target = &asset.URL
		out.consumed = append(out.consumed, img.tempKey)
		out.written = append(out.written, asset.PublicID)
	}
	return out, nil
}

// cleanup destroys objects left over by a resolution. Failures are logged; temp
// leftovers are swept by the temp asset cron job.
func (s *service) cleanup(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	var errs error
	for _, key := range keys {
		errs = multierr.Append(errs, s.assets.Destroy(ctx, key))
	}
	if errs != nil {
		s.logg.Error(s.logg.WithField(ctx, "asset_keys", keys), "asset cleanup failed", errs)
	}
}

func (s *service) notify(ctx context.Context, change *models.PendingChange, payload Payload, listing *models.Listing) {
	users, err := s.users.FindByIDs(ctx, []uuid.UUID{change.RequestedBy})
	switch {
	case err != nil:
		s.logg.Error(ctx, "load requester for notification", err)
	case len(users) == 0:
		s.logg.Warn(s.logg.WithField(ctx, "requested_by", change.RequestedBy.String()), "requester not found, skipping notification")
	case change.Status == enums.ChangeStatusApproved:
		s.notifier.Notify(ctx, approvedMessage(&users[0], change.Action))
	default:
		s.notifier.Notify(ctx, rejectedMessage(&users[0], change.Action, *change.RejectionReason))
	}

	if change.Status != enums.ChangeStatusApproved || listing == nil {
		return
	}
	status, ok := payload.(StatusChangePayload)
	if !ok || status.Status != enums.ListingStatusOnHold {
		return
	}
	if listing.OwnerEmail == nil || *listing.OwnerEmail == "" {
		s.logg.Warn(ctx, "listing has no owner email, skipping on hold notice")
		return
	}
	s.notifier.Notify(ctx, onHoldMessage(*listing.OwnerEmail, listing.Name, status.Instructions))
}

func (s *service) ListPending(ctx context.Context, params pagination.Params) (*ListResult, error) {
	status := enums.ChangeStatusPending
	return s.list(ctx, listParams{Status: &status}, params)
}

func (s *service) ListMine(ctx context.Context, requestedBy uuid.UUID, params pagination.Params) (*ListResult, error) {
	if requestedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return s.list(ctx, listParams{RequestedBy: &requestedBy}, params)
}

func (s *service) list(ctx context.Context, filter listParams, params pagination.Params) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	filter.Cursor = cursor
	filter.Limit = params.Limit

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pending changes")
	}
	rows, next := pagination.Trim(rows, params.Limit, func(c models.PendingChange) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	})

	items, err := s.expand(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Cursor: next}, nil
}

// expand attaches the requester and the target listing to each change.
func (s *service) expand(ctx context.Context, rows []models.PendingChange) ([]ChangeDTO, error) {
	userIDs := make([]uuid.UUID, 0, len(rows))
	targetIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		userIDs = append(userIDs, row.RequestedBy)
		if row.TargetID != nil {
			targetIDs = append(targetIDs, *row.TargetID)
		}
	}

	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load requesters")
	}
	byUser := make(map[uuid.UUID]*models.User, len(users))
	for i := range users {
		byUser[users[i].ID] = &users[i]
	}

	targets, err := s.listings.FindByIDs(ctx, targetIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load target listings")
	}
	byListing := make(map[uuid.UUID]*models.Listing, len(targets))
	for i := range targets {
		byListing[targets[i].ID] = &targets[i]
	}

	items := make([]ChangeDTO, 0, len(rows))
	for i := range rows {
		dto := toDTO(&rows[i])
		dto.Requester = requesterDTO(byUser[rows[i].RequestedBy])
		if rows[i].TargetID != nil {
			if l, ok := byListing[*rows[i].TargetID]; ok {
				dto.Target = listings.FromModel(l)
			}
		}
		items = append(items, dto)
	}
	return items, nil
}

func dependencyError(err error, op string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
