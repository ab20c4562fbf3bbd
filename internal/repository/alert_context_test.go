package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kubelab/log-aggregator/api/server/types"
	"github.com/kubelab/log-aggregator/internal/models"
	"github.com/kubelab/log-aggregator/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newAlertContext(alertname, namespace string, workload *string, firedAt time.Time) *models.AlertContext {
	return &models.AlertContext{
		AlertName:   namespace + "/" + alertname,
		Alertname:   alertname,
		Namespace:   namespace,
		Workload:    workload,
		Severity:    types.SeverityWarning,
		Status:      types.AlertStatusFiring,
		FiredAt:     firedAt,
		Labels:      datatypes.NewJSONType(map[string]string{"alertname": alertname}),
		Annotations: datatypes.NewJSONType(map[string]string{}),
	}
}

func strPtr(s string) *string {
	return &s
}

func TestCreateAndReadAlertContext(t *testing.T) {
	tester := &tester{
		dbFileName: "./alert_context_create_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	firedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	logs := "[2024-01-01 12:00:00] [sonarr-abc123/sonarr] started"
	lastSeen := firedAt.Add(time.Minute)

	ac := newAlertContext("PodCrashLooping", "media", strPtr("sonarr-abc123"), firedAt)
	ac.Logs = &logs
	ac.Events = models.EventList{
		{
			Type:           "Warning",
			Reason:         "BackOff",
			Message:        "Back-off restarting failed container",
			Count:          3,
			LastTimestamp:  &lastSeen,
			InvolvedObject: types.InvolvedObject{Kind: "Pod", Name: "sonarr-abc123"},
		},
	}
	ac.Metrics = models.MetricsDocument{
		Data: &types.PodMetrics{
			CPU: []types.ContainerSeries{
				{Container: "sonarr", Values: []types.MetricSample{{Timestamp: firedAt, Value: 0.25}}},
			},
		},
	}

	ac, err := tester.repo.AlertContext.CreateAlertContext(ac)

	if err != nil {
		t.Fatalf("Expected no error after creating alert context, got %v", err)
	}

	if ac.ID == uuid.Nil {
		t.Fatalf("Expected alert context ID to be generated")
	}

	got, err := tester.repo.AlertContext.ReadAlertContext(ac.ID)

	if err != nil {
		t.Fatalf("Expected no error after reading alert context, got %v", err)
	}

	if got.AlertName != "media/PodCrashLooping" {
		t.Fatalf("Expected alert name to be 'media/PodCrashLooping', got '%s'", got.AlertName)
	}

	if got.Logs == nil || *got.Logs != logs {
		t.Fatalf("Expected logs to round trip, got %v", got.Logs)
	}

	if got.PreviousLogs != nil {
		t.Fatalf("Expected previous logs to be absent, got %v", *got.PreviousLogs)
	}

	if len(got.Events) != 1 || got.Events[0].Count != 3 {
		t.Fatalf("Expected 1 event with count 3, got %v", got.Events)
	}

	if got.Metrics.Data == nil || len(got.Metrics.Data.CPU) != 1 {
		t.Fatalf("Expected cpu metrics to round trip, got %v", got.Metrics.Data)
	}

	if got.Labels.Data()["alertname"] != "PodCrashLooping" {
		t.Fatalf("Expected labels to round trip, got %v", got.Labels.Data())
	}

	if !got.FiredAt.Equal(firedAt) {
		t.Fatalf("Expected fired at to be %v, got %v", firedAt, got.FiredAt)
	}
}

func TestReadMissingAlertContext(t *testing.T) {
	tester := &tester{
		dbFileName: "./alert_context_missing_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	_, err := tester.repo.AlertContext.ReadAlertContext(uuid.New())

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("Expected record not found error, got %v", err)
	}
}

func TestEmptyJSONColumnsStoredAsNull(t *testing.T) {
	tester := &tester{
		dbFileName: "./alert_context_null_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	ac := newAlertContext("KubeJobFailed", "batch", nil, time.Now().UTC())
	ac.Events = models.EventList{}
	ac.Metrics = models.MetricsDocument{Data: &types.PodMetrics{}}

	if _, err := tester.repo.AlertContext.CreateAlertContext(ac); err != nil {
		t.Fatalf("Expected no error after creating alert context, got %v", err)
	}

	var nullCount int64

	if err := tester.db.Model(&models.AlertContext{}).Where("events IS NULL AND metrics IS NULL").Count(&nullCount).Error; err != nil {
		t.Fatalf("Expected no error counting rows, got %v", err)
	}

	if nullCount != 1 {
		t.Fatalf("Expected empty events and metrics to be stored as NULL, got %d matching rows", nullCount)
	}

	got, err := tester.repo.AlertContext.ReadAlertContext(ac.ID)

	if err != nil {
		t.Fatalf("Expected no error after reading alert context, got %v", err)
	}

	apiType := got.ToAPIType()

	if apiType.Events != nil || apiType.Metrics != nil {
		t.Fatalf("Expected events and metrics to be absent, got %v %v", apiType.Events, apiType.Metrics)
	}
}

func TestFindRecentDuplicate(t *testing.T) {
	tester := &tester{
		dbFileName: "./alert_context_dedup_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	now := time.Now().UTC()

	older := newAlertContext("PodCrashLooping", "media", strPtr("sonarr-abc123"), now)
	older.CreatedAt = now.Add(-30 * time.Minute)

	newer := newAlertContext("PodCrashLooping", "media", strPtr("sonarr-abc123"), now)
	newer.CreatedAt = now.Add(-10 * time.Minute)

	expired := newAlertContext("PodCrashLooping", "media", strPtr("radarr-xyz"), now)
	expired.CreatedAt = now.Add(-2 * time.Hour)

	noWorkload := newAlertContext("PodCrashLooping", "media", nil, now)
	noWorkload.CreatedAt = now.Add(-5 * time.Minute)

	for _, ac := range []*models.AlertContext{older, newer, expired, noWorkload} {
		if _, err := tester.repo.AlertContext.CreateAlertContext(ac); err != nil {
			t.Fatalf("Expected no error after creating alert context, got %v", err)
		}
	}

	since := now.Add(-time.Hour)

	dup, err := tester.repo.AlertContext.FindRecentDuplicate("PodCrashLooping", "media", strPtr("sonarr-abc123"), since)

	if err != nil {
		t.Fatalf("Expected no error finding duplicate, got %v", err)
	}

	if dup == nil || dup.ID != newer.ID {
		t.Fatalf("Expected most recently created duplicate %s, got %v", newer.ID, dup)
	}

	dup, err = tester.repo.AlertContext.FindRecentDuplicate("PodCrashLooping", "media", strPtr("radarr-xyz"), since)

	if err != nil {
		t.Fatalf("Expected no error finding duplicate, got %v", err)
	}

	if dup != nil {
		t.Fatalf("Expected bundle outside of the window to be ignored, got %s", dup.ID)
	}

	dup, err = tester.repo.AlertContext.FindRecentDuplicate("PodCrashLooping", "media", nil, since)

	if err != nil {
		t.Fatalf("Expected no error finding duplicate, got %v", err)
	}

	if dup == nil || dup.ID != noWorkload.ID {
		t.Fatalf("Expected workload-less duplicate %s, got %v", noWorkload.ID, dup)
	}

	dup, err = tester.repo.AlertContext.FindRecentDuplicate("PodCrashLooping", "downloads", strPtr("sonarr-abc123"), since)

	if err != nil {
		t.Fatalf("Expected no error finding duplicate, got %v", err)
	}

	if dup != nil {
		t.Fatalf("Expected no duplicate in another namespace, got %s", dup.ID)
	}
}

func TestListAlertContextsByFiredAt(t *testing.T) {
	tester := &tester{
		dbFileName: "./alert_context_list_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	lateEvening := newAlertContext("HighLatency", "web", nil, day.Add(24*time.Hour-100*time.Millisecond))
	noon := newAlertContext("HighLatency", "web", nil, day.Add(12*time.Hour))
	nextDay := newAlertContext("HighLatency", "web", nil, day.Add(24*time.Hour+100*time.Millisecond))

	for _, ac := range []*models.AlertContext{noon, lateEvening, nextDay} {
		if _, err := tester.repo.AlertContext.CreateAlertContext(ac); err != nil {
			t.Fatalf("Expected no error after creating alert context, got %v", err)
		}
	}

	end := day.Add(24 * time.Hour)

	contexts, err := tester.repo.AlertContext.ListAlertContexts(
		&utils.ListAlertContextsFilter{
			FiredAfter:  &day,
			FiredBefore: &end,
		},
		utils.WithSortBy("fired_at"),
		utils.WithOrder(utils.OrderDesc),
	)

	if err != nil {
		t.Fatalf("Expected no error listing alert contexts, got %v", err)
	}

	if len(contexts) != 2 {
		t.Fatalf("Expected 2 alert contexts, got %d", len(contexts))
	}

	if contexts[0].ID != lateEvening.ID || contexts[1].ID != noon.ID {
		t.Fatalf("Expected alert contexts ordered by fired at descending")
	}
}

func TestDeleteAlertContexts(t *testing.T) {
	tester := &tester{
		dbFileName: "./alert_context_delete_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	now := time.Now().UTC()

	old := newAlertContext("NodeDiskPressure", "kube-system", nil, now.Add(-10*24*time.Hour))
	old.CreatedAt = now.Add(-10 * 24 * time.Hour)

	fresh := newAlertContext("NodeDiskPressure", "kube-system", nil, now)

	for _, ac := range []*models.AlertContext{old, fresh} {
		if _, err := tester.repo.AlertContext.CreateAlertContext(ac); err != nil {
			t.Fatalf("Expected no error after creating alert context, got %v", err)
		}
	}

	deleted, err := tester.repo.AlertContext.DeleteCreatedBefore(now.Add(-7 * 24 * time.Hour))

	if err != nil {
		t.Fatalf("Expected no error deleting old alert contexts, got %v", err)
	}

	if deleted != 1 {
		t.Fatalf("Expected 1 deleted alert context, got %d", deleted)
	}

	deleted, err = tester.repo.AlertContext.DeleteCreatedBefore(now.Add(-7 * 24 * time.Hour))

	if err != nil {
		t.Fatalf("Expected no error deleting old alert contexts, got %v", err)
	}

	if deleted != 0 {
		t.Fatalf("Expected second purge to delete nothing, got %d", deleted)
	}

	dayStart := now.Truncate(24 * time.Hour)

	deleted, err = tester.repo.AlertContext.DeleteFiredBetween(dayStart, dayStart.Add(24*time.Hour))

	if err != nil {
		t.Fatalf("Expected no error deleting alert contexts for the day, got %v", err)
	}

	if deleted != 1 {
		t.Fatalf("Expected 1 deleted alert context, got %d", deleted)
	}
}

func TestTransactionRollback(t *testing.T) {
	tester := &tester{
		dbFileName: "./alert_context_tx_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	errBoom := errors.New("boom")

	err := tester.repo.Transaction(func(txRepo *Repository) error {
		if _, err := txRepo.AlertContext.CreateAlertContext(newAlertContext("Watchdog", "monitoring", nil, time.Now().UTC())); err != nil {
			return err
		}

		return errBoom
	})

	if !errors.Is(err, errBoom) {
		t.Fatalf("Expected transaction to return the callback error, got %v", err)
	}

	contexts, err := tester.repo.AlertContext.ListAlertContexts(&utils.ListAlertContextsFilter{})

	if err != nil {
		t.Fatalf("Expected no error listing alert contexts, got %v", err)
	}

	if len(contexts) != 0 {
		t.Fatalf("Expected rolled back transaction to persist nothing, got %d rows", len(contexts))
	}
}
