package mission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	domainerrors "mission-dispatch/internal/errors"
)

const columns = `id, client_id, origin_lat, origin_lng, dest_lat, dest_lng, manifest, cost_cents,
	payment_confirmed, assignment_status, candidate_drivers, current_candidate_index,
	assigned_driver_id, mission_status, version, last_attempt_at, created_at, updated_at`

// UpdateFields carries the mutations applied by a ConditionalUpdate. Nil
// pointers leave the column untouched; version always increments.
type UpdateFields struct {
	AssignmentStatus      *AssignmentStatus
	CandidateDrivers      *[]string
	CurrentCandidateIndex *int
	AssignedDriverID      *string
	ClearAssignedDriver   bool
	MissionStatus         *MissionStatus
	LastAttemptAt         *time.Time
}

// Store is the persisted record of each mission's assignment state.
// ConditionalUpdate is a compare-and-swap keyed on the current assignment
// status: it reports false when the expected status no longer holds, which
// callers treat as a lost race.
type Store interface {
	Create(ctx context.Context, m *Mission) error
	Get(ctx context.Context, id string) (*Mission, error)
	ConditionalUpdate(ctx context.Context, id string, expected AssignmentStatus, fields UpdateFields) (bool, error)
	AppendHistory(ctx context.Context, missionID, eventType, details, triggeredBy string) error
	History(ctx context.Context, missionID string) ([]HistoryEvent, error)
	FindRetryable(ctx context.Context, statuses []AssignmentStatus, cooldown time.Duration, limit int) ([]*Mission, error)
	FindByStatus(ctx context.Context, statuses []AssignmentStatus, limit int) ([]*Mission, error)
	ActiveAssignmentForDriver(ctx context.Context, driverID string) (*Mission, error)
	WaitingOnDriver(ctx context.Context, driverID string) ([]*Mission, error)
	ConfirmPayment(ctx context.Context, id string) (bool, error)
	AdvanceMissionStatus(ctx context.Context, id string, expected, next MissionStatus) (bool, error)
}

type sqlStore struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) Store {
	return &sqlStore{db: db}
}

func (s *sqlStore) Create(ctx context.Context, m *Mission) error {
	const query = `INSERT INTO missions (id, client_id, origin_lat, origin_lng, dest_lat, dest_lng,
		manifest, cost_cents, payment_confirmed, assignment_status, candidate_drivers,
		current_candidate_index, mission_status, version, created_at, updated_at)
		VALUES (:id, :client_id, :origin_lat, :origin_lng, :dest_lat, :dest_lng,
		:manifest, :cost_cents, :payment_confirmed, :assignment_status, :candidate_drivers,
		:current_candidate_index, :mission_status, :version, :created_at, :updated_at)`
	_, err := sqlx.NamedExecContext(ctx, s.db, query, m)
	if err != nil {
		return domainerrors.NewInternal("failed to create mission", err)
	}
	return nil
}

func (s *sqlStore) Get(ctx context.Context, id string) (*Mission, error) {
	var m Mission
	query := fmt.Sprintf(`SELECT %s FROM missions WHERE id = $1`, columns)
	err := sqlx.GetContext(ctx, s.db, &m, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.MissionNotFound(id)
	}
	if err != nil {
		return nil, domainerrors.NewInternal("failed to load mission", err)
	}
	return &m, nil
}

func (s *sqlStore) ConditionalUpdate(ctx context.Context, id string, expected AssignmentStatus, fields UpdateFields) (bool, error) {
	sets := []string{"version = version + 1", "updated_at = NOW()"}
	args := []any{}
	idx := 1

	add := func(col string, v any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, v)
		idx++
	}

	if fields.AssignmentStatus != nil {
		add("assignment_status", string(*fields.AssignmentStatus))
	}
	if fields.CandidateDrivers != nil {
		add("candidate_drivers", pq.Array(*fields.CandidateDrivers))
	}
	if fields.CurrentCandidateIndex != nil {
		add("current_candidate_index", *fields.CurrentCandidateIndex)
	}
	if fields.AssignedDriverID != nil {
		add("assigned_driver_id", *fields.AssignedDriverID)
	} else if fields.ClearAssignedDriver {
		sets = append(sets, "assigned_driver_id = NULL")
	}
	if fields.MissionStatus != nil {
		add("mission_status", string(*fields.MissionStatus))
	}
	if fields.LastAttemptAt != nil {
		add("last_attempt_at", *fields.LastAttemptAt)
	}

	query := fmt.Sprintf(`UPDATE missions SET %s WHERE id = $%d AND assignment_status = $%d`,
		strings.Join(sets, ", "), idx, idx+1)
	args = append(args, id, string(expected))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, domainerrors.NewInternal("conditional update failed", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, domainerrors.NewInternal("conditional update result", err)
	}
	return n == 1, nil
}

func (s *sqlStore) AppendHistory(ctx context.Context, missionID, eventType, details, triggeredBy string) error {
	const query = `INSERT INTO mission_history (mission_id, event_type, details, triggered_by)
		VALUES ($1, $2, $3, $4)`
	_, err := s.db.ExecContext(ctx, query, missionID, eventType, details, triggeredBy)
	if err != nil {
		return domainerrors.NewInternal("failed to append history", err)
	}
	return nil
}

func (s *sqlStore) History(ctx context.Context, missionID string) ([]HistoryEvent, error) {
	var events []HistoryEvent
	const query = `SELECT id, mission_id, event_type, details, triggered_by, created_at
		FROM mission_history WHERE mission_id = $1 ORDER BY id ASC`
	if err := sqlx.SelectContext(ctx, s.db, &events, query, missionID); err != nil {
		return nil, domainerrors.NewInternal("failed to load history", err)
	}
	return events, nil
}

// FindRetryable returns payment-confirmed missions in one of the given
// failure statuses whose cooldown has elapsed, oldest attempt first.
func (s *sqlStore) FindRetryable(ctx context.Context, statuses []AssignmentStatus, cooldown time.Duration, limit int) ([]*Mission, error) {
	var missions []*Mission
	query := fmt.Sprintf(`SELECT %s FROM missions
		WHERE assignment_status = ANY($1)
		  AND payment_confirmed = TRUE
		  AND mission_status NOT IN ('COMPLETED', 'CANCELED')
		  AND (last_attempt_at IS NULL OR last_attempt_at < $2)
		ORDER BY last_attempt_at ASC NULLS FIRST
		LIMIT $3`, columns)
	cutoff := time.Now().Add(-cooldown)
	if err := sqlx.SelectContext(ctx, s.db, &missions, query, statusArray(statuses), cutoff, limit); err != nil {
		return nil, domainerrors.NewInternal("failed to find retryable missions", err)
	}
	return missions, nil
}

func (s *sqlStore) FindByStatus(ctx context.Context, statuses []AssignmentStatus, limit int) ([]*Mission, error) {
	var missions []*Mission
	query := fmt.Sprintf(`SELECT %s FROM missions
		WHERE assignment_status = ANY($1)
		ORDER BY created_at DESC
		LIMIT $2`, columns)
	if err := sqlx.SelectContext(ctx, s.db, &missions, query, statusArray(statuses), limit); err != nil {
		return nil, domainerrors.NewInternal("failed to find missions by status", err)
	}
	return missions, nil
}

func (s *sqlStore) ActiveAssignmentForDriver(ctx context.Context, driverID string) (*Mission, error) {
	var m Mission
	query := fmt.Sprintf(`SELECT %s FROM missions
		WHERE assigned_driver_id = $1 AND assignment_status = 'ASSIGNED'
		LIMIT 1`, columns)
	err := sqlx.GetContext(ctx, s.db, &m, query, driverID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domainerrors.NewInternal("failed to check driver assignment", err)
	}
	return &m, nil
}

func (s *sqlStore) WaitingOnDriver(ctx context.Context, driverID string) ([]*Mission, error) {
	var missions []*Mission
	query := fmt.Sprintf(`SELECT %s FROM missions
		WHERE assignment_status = 'WAITING_FOR_DRIVER'
		  AND candidate_drivers @> ARRAY[$1]::TEXT[]`, columns)
	if err := sqlx.SelectContext(ctx, s.db, &missions, query, driverID); err != nil {
		return nil, domainerrors.NewInternal("failed to find missions waiting on driver", err)
	}
	return missions, nil
}

func (s *sqlStore) ConfirmPayment(ctx context.Context, id string) (bool, error) {
	const query = `UPDATE missions SET payment_confirmed = TRUE, updated_at = NOW()
		WHERE id = $1 AND payment_confirmed = FALSE`
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, domainerrors.NewInternal("failed to confirm payment", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, domainerrors.NewInternal("confirm payment result", err)
	}
	return n == 1, nil
}

// AdvanceMissionStatus is the CAS for the operational state machine,
// independent of the assignment protocol.
func (s *sqlStore) AdvanceMissionStatus(ctx context.Context, id string, expected, next MissionStatus) (bool, error) {
	const query = `UPDATE missions SET mission_status = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND mission_status = $3`
	res, err := s.db.ExecContext(ctx, query, string(next), id, string(expected))
	if err != nil {
		return false, domainerrors.NewInternal("failed to advance mission status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, domainerrors.NewInternal("advance mission status result", err)
	}
	return n == 1, nil
}

func statusArray(statuses []AssignmentStatus) any {
	strs := make([]string, len(statuses))
	for i, st := range statuses {
		strs[i] = string(st)
	}
	return pq.Array(strs)
}
