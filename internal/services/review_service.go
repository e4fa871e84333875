package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/christian-rost/stammdatenmanagement/internal/database"
	"github.com/christian-rost/stammdatenmanagement/internal/grouping"
	"github.com/christian-rost/stammdatenmanagement/internal/metrics"
)

// RecordSource reads master records
type RecordSource interface {
	ListForGrouping(ctx context.Context) ([]database.MasterRecord, error)
	ListByKey(ctx context.Context, name, locality string) ([]database.MasterRecord, error)
}

// DecisionRepository persists decisions keyed by (name1, ort01)
type DecisionRepository interface {
	List(ctx context.Context) ([]database.Decision, error)
	Upsert(ctx context.Context, decision *database.Decision) error
}

// GroupView is a duplicate group merged with its decision. Decision fields
// are nil when no decision has been stored for the group.
type GroupView struct {
	Name      string                  `json:"name"`
	Locality  string                  `json:"locality"`
	Count     int                     `json:"count"`
	MemberIDs []string                `json:"member_ids"`
	Status    database.DecisionStatus `json:"status"`
	KeepID    *string                 `json:"keep_id"`
	DeleteIDs []string                `json:"delete_ids"`
	Note      *string                 `json:"note"`
	Author    *string                 `json:"author"`
}

// Stats summarizes review progress
type Stats struct {
	Total    int `json:"total"`
	Open     int `json:"open"`
	Resolved int `json:"resolved"`
	Ignored  int `json:"ignored"`
}

// DecisionInput is a reviewer verdict for one group. An empty Status means
// resolved.
type DecisionInput struct {
	Key       grouping.Key
	KeepID    *string
	DeleteIDs []string
	Note      *string
	Status    database.DecisionStatus
}

// ReviewService groups master records, merges them with stored decisions and
// accepts new decisions. It keeps no state between calls; every operation
// reads the stores afresh.
type ReviewService struct {
	records   RecordSource
	decisions DecisionRepository
	metrics   *metrics.ReviewMetrics
}

// NewReviewService creates a review service. Passing nil stores yields a
// service whose operations all fail with ErrNotConfigured.
func NewReviewService(records RecordSource, decisions DecisionRepository) *ReviewService {
	return &ReviewService{
		records:   records,
		decisions: decisions,
	}
}

// SetMetrics attaches metrics collectors
func (s *ReviewService) SetMetrics(m *metrics.ReviewMetrics) {
	s.metrics = m
}

// Configured reports whether both stores are available
func (s *ReviewService) Configured() bool {
	return s.records != nil && s.decisions != nil
}

// ListGroups returns every duplicate group with its decision or defaults, in
// grouping order.
func (s *ReviewService) ListGroups(ctx context.Context) (views []GroupView, err error) {
	defer s.observe("list_groups", time.Now(), &err)

	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	groups, err := s.loadGroups(ctx)
	if err != nil {
		return nil, err
	}
	decisions, err := s.loadDecisions(ctx)
	if err != nil {
		return nil, err
	}

	byKey := make(map[grouping.Key]database.Decision, len(decisions))
	for _, d := range decisions {
		byKey[grouping.Key{Name: d.Name1, Locality: d.Ort01}] = d
	}

	views = make([]GroupView, 0, len(groups))
	for _, g := range groups {
		view := GroupView{
			Name:      g.Key.Name,
			Locality:  g.Key.Locality,
			Count:     g.Count,
			MemberIDs: g.MemberIDs,
			Status:    database.DecisionStatusOpen,
		}
		if d, ok := byKey[g.Key]; ok {
			applyDecision(&view, d)
		}
		views = append(views, view)
	}

	s.metrics.SetGroupCount(len(groups))
	return views, nil
}

// GetGroupRecords returns the member records of one group ordered by lifnr
func (s *ReviewService) GetGroupRecords(ctx context.Context, key grouping.Key) (records []database.MasterRecord, err error) {
	defer s.observe("group_records", time.Now(), &err)

	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	raw, err := s.records.ListByKey(ctx, key.Name, key.Locality)
	if err != nil {
		return nil, fmt.Errorf("%w: querying records for %q/%q: %w", ErrDataUnavailable, key.Name, key.Locality, err)
	}
	return grouping.Filter(raw, key), nil
}

// GetStats counts groups and decided groups. Open is floored at zero so
// decisions for groups that no longer exist cannot make it negative.
func (s *ReviewService) GetStats(ctx context.Context) (stats Stats, err error) {
	defer s.observe("stats", time.Now(), &err)

	if !s.Configured() {
		return Stats{}, ErrNotConfigured
	}

	groups, err := s.loadGroups(ctx)
	if err != nil {
		return Stats{}, err
	}
	decisions, err := s.loadDecisions(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats.Total = len(groups)
	for _, d := range decisions {
		switch d.Status {
		case database.DecisionStatusResolved:
			stats.Resolved++
		case database.DecisionStatusIgnored:
			stats.Ignored++
		}
	}
	stats.Open = max(stats.Total-stats.Resolved-stats.Ignored, 0)

	return stats, nil
}

// SubmitDecision stores the reviewer's verdict for one group, replacing any
// earlier verdict for the same key. The reviewer always becomes the author.
// Keep and delete identifiers are not checked against the group members.
func (s *ReviewService) SubmitDecision(ctx context.Context, reviewer string, in DecisionInput) (decision *database.Decision, err error) {
	defer s.observe("submit_decision", time.Now(), &err)

	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	if reviewer == "" {
		return nil, fmt.Errorf("%w: reviewer identity is required", ErrInvalidDecision)
	}

	status := in.Status
	if status == "" {
		status = database.DecisionStatusResolved
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidDecision, status)
	}

	deleteIDs := database.StringList(in.DeleteIDs)
	if deleteIDs == nil {
		deleteIDs = database.StringList{}
	}

	decision = &database.Decision{
		Name1:     in.Key.Name,
		Ort01:     in.Key.Locality,
		KeepID:    in.KeepID,
		DeleteIDs: deleteIDs,
		Note:      in.Note,
		Author:    reviewer,
		Status:    status,
	}

	if err := s.decisions.Upsert(ctx, decision); err != nil {
		log.Printf("ReviewService: Failed to save decision for %q/%q: %v", in.Key.Name, in.Key.Locality, err)
		return nil, fmt.Errorf("%w: %w", ErrStorageWriteFailed, err)
	}

	s.metrics.DecisionSaved(string(status))
	log.Printf("ReviewService: Decision saved for %q/%q by %s (status=%s)", in.Key.Name, in.Key.Locality, reviewer, status)
	return decision, nil
}

// ListDecisions returns all stored decisions ordered by key
func (s *ReviewService) ListDecisions(ctx context.Context) (decisions []database.Decision, err error) {
	defer s.observe("list_decisions", time.Now(), &err)

	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	return s.loadDecisions(ctx)
}

func (s *ReviewService) loadGroups(ctx context.Context) ([]grouping.Group, error) {
	records, err := s.records.ListForGrouping(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing records: %w", ErrDataUnavailable, err)
	}
	return grouping.GroupRecords(records), nil
}

func (s *ReviewService) loadDecisions(ctx context.Context) ([]database.Decision, error) {
	decisions, err := s.decisions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing decisions: %w", ErrDataUnavailable, err)
	}
	return decisions, nil
}

func (s *ReviewService) observe(operation string, started time.Time, errp *error) {
	err := *errp
	s.metrics.ObserveOperation(operation, started, ErrorKind(err), err != nil)
}

func applyDecision(view *GroupView, d database.Decision) {
	if d.Status != "" {
		view.Status = d.Status
	}
	view.KeepID = d.KeepID
	view.DeleteIDs = []string(d.DeleteIDs)
	if view.DeleteIDs == nil {
		view.DeleteIDs = []string{}
	}
	view.Note = d.Note
	author := d.Author
	view.Author = &author
}
