package services

import (
  "context"
  "encoding/json"
  "github.com/google/uuid"
  "gorm.io/datatypes"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/aggregate"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/authz"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/normalization"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/apierr"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/logger"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/repos"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/requestdata"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/types"
)

type ClickInput struct {
  Type      string                 `json:"type"`
  SubjectID string                 `json:"subject_id"`
  Metadata  map[string]interface{} `json:"metadata"`
}

type ClickListing struct {
  Records []*types.ClickEvent `json:"records"`
  Stats   ClickStats          `json:"stats"`
}

type ClickStats struct {
  Total   int                `json:"total"`
  PerType map[string]int     `json:"per_type"`
  Top     []aggregate.Bucket `json:"top"`
}

type TrackingService interface {
  RecordClick(ctx context.Context, input ClickInput) error
  ListClicks(ctx context.Context) (*ClickListing, error)
}

type trackingService struct {
  log            *logger.Logger
  clickEventRepo repos.ClickEventRepo
}

func NewTrackingService(log *logger.Logger, clickEventRepo repos.ClickEventRepo) TrackingService {
  serviceLog := log.With("service", "TrackingService")
  return &trackingService{log: serviceLog, clickEventRepo: clickEventRepo}
}

// RecordClick is fire-and-forget from the caller's point of view: a storage
// failure is logged and swallowed so analytics never breaks a page.
func (ts *trackingService) RecordClick(ctx context.Context, input ClickInput) error {
  eventType := normalization.ParseInputString(input.Type)
  if eventType == "" {
    return apierr.Validation("a click type is required")
  }

  var metadata datatypes.JSON
  if len(input.Metadata) > 0 {
    raw, mErr := json.Marshal(input.Metadata)
    if mErr != nil {
      ts.log.Warn("Click metadata not serializable, dropping it", "error", mErr)
    } else {
      metadata = datatypes.JSON(raw)
    }
  }

  event := &types.ClickEvent{
    ID:        uuid.New(),
    Type:      eventType,
    SubjectID: normalization.TrimOnly(input.SubjectID),
    Metadata:  metadata,
  }
  if _, cErr := ts.clickEventRepo.Create(ctx, nil, []*types.ClickEvent{event}); cErr != nil {
    ts.log.Warn("Failed to record click event", "error", cErr, "type", eventType)
  }
  return nil
}

func (ts *trackingService) ListClicks(ctx context.Context) (*ClickListing, error) {
  rd := requestdata.GetRequestData(ctx)
  if aErr := authz.RequireAdmin(rd); aErr != nil {
    return nil, aErr
  }
  events, err := ts.clickEventRepo.List(ctx, nil)
  if err != nil {
    ts.log.Warn("Failed to list click events", "error", err)
    return nil, apierr.Upstream(err)
  }
  keyFn := func(e *types.ClickEvent) string { return e.Type }
  listing := &ClickListing{
    Records: events,
    Stats: ClickStats{
      Total:   aggregate.Total(events),
      PerType: aggregate.CountBy(events, keyFn),
      Top:     aggregate.TopN(events, keyFn, 5),
    },
  }
  return listing, nil
}
