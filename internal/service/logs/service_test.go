package logs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mamadbah2/bizdesk/internal/apperror"
	"github.com/mamadbah2/bizdesk/internal/domain/models"
)

type fakeRepo struct {
	logs     []models.LogView
	listErr  error
	view     *models.LogView
	payments float64
	days     int64
	otv      float64
	exists   bool
	updated  bool
	deleted  bool

	pipelines [][]string
	sumIDs    [][]primitive.ObjectID
	inserted  *models.LogEntry
	set       bson.D
	deletedID primitive.ObjectID
	lastPipe  mongo.Pipeline
}

func (f *fakeRepo) List(_ context.Context, p mongo.Pipeline) ([]models.LogView, error) {
	f.lastPipe = p
	return f.logs, f.listErr
}

func (f *fakeRepo) FindView(_ context.Context, p mongo.Pipeline) (*models.LogView, error) {
	f.lastPipe = p
	return f.view, nil
}

func (f *fakeRepo) PaymentsSum(_ context.Context, ids []primitive.ObjectID) (float64, error) {
	f.sumIDs = append(f.sumIDs, ids)
	return f.payments, nil
}

func (f *fakeRepo) AttendanceSums(_ context.Context, ids []primitive.ObjectID) (int64, float64, error) {
	f.sumIDs = append(f.sumIDs, ids)
	return f.days, f.otv, nil
}

func (f *fakeRepo) Insert(_ context.Context, e *models.LogEntry) error {
	e.ID = primitive.NewObjectID()
	f.inserted = e
	return nil
}

func (f *fakeRepo) Update(_ context.Context, _ primitive.ObjectID, set bson.D) (bool, error) {
	f.set = set
	return f.updated, nil
}

func (f *fakeRepo) Exists(context.Context, primitive.ObjectID) (bool, error) { return f.exists, nil }

func (f *fakeRepo) Delete(_ context.Context, id primitive.ObjectID) (bool, error) {
	f.deletedID = id
	return f.deleted, nil
}

type fakeWorkers map[primitive.ObjectID]bool

func (w fakeWorkers) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	return w[id], nil
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newService(repo *fakeRepo, workers fakeWorkers) *Service {
	svc := NewService(repo, workers, 8, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func str(s string) *string   { return &s }
func flag(b bool) *bool      { return &b }
func num(f float64) *float64 { return &f }

func view(worker primitive.ObjectID) models.LogView {
	return models.LogView{LogEntry: models.LogEntry{ID: primitive.NewObjectID(), Worker: worker}}
}

func TestList_ElevatedSeesAllAndTotalsCoverListedIDs(t *testing.T) {
	a, b := view(primitive.NewObjectID()), view(primitive.NewObjectID())
	repo := &fakeRepo{logs: []models.LogView{a, b}, payments: 150, days: 2, otv: 1.5}
	svc := newService(repo, nil)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	page, err := svc.List(context.Background(),
		models.Caller{ID: primitive.NewObjectID().Hex(), AccessLevel: models.AccessManager},
		models.Filter{Search: "ali", StartDate: &start})
	require.NoError(t, err)

	assert.Len(t, page.Logs, 2)
	assert.Equal(t, 150.0, page.PaymentsSum)
	assert.Equal(t, int64(2), page.DaysCount)
	assert.Equal(t, 1.5, page.OTVSum)
	assert.Equal(t, "2024-01-01", *page.StartDate)
	assert.Nil(t, page.EndDate)
	assert.Equal(t, "ali", page.Search)

	require.Len(t, repo.sumIDs, 2)
	for _, ids := range repo.sumIDs {
		assert.Equal(t, []primitive.ObjectID{a.ID, b.ID}, ids)
	}

	first := repo.lastPipe[0][0]
	assert.Equal(t, "$match", first.Key)
	assert.Contains(t, first.Value.(bson.D).Map(), "date", "elevated callers get no worker match")
	last := repo.lastPipe[len(repo.lastPipe)-1][0]
	assert.Equal(t, "$sort", last.Key)
}

func TestList_UserIsScopedToOwnLogs(t *testing.T) {
	me := primitive.NewObjectID()
	repo := &fakeRepo{logs: []models.LogView{view(me)}}
	svc := newService(repo, nil)

	_, err := svc.List(context.Background(), models.Caller{ID: me.Hex(), AccessLevel: models.AccessUser}, models.Filter{})
	require.NoError(t, err)

	assert.Equal(t, bson.D{{Key: "$match", Value: bson.D{{Key: "worker", Value: me}}}}, repo.lastPipe[0])
}

func TestList_EmptyResultHasZeroTotals(t *testing.T) {
	repo := &fakeRepo{payments: 99, days: 9, otv: 9}
	svc := newService(repo, nil)

	page, err := svc.List(context.Background(), models.Caller{AccessLevel: models.AccessAdmin}, models.Filter{})
	require.NoError(t, err)

	assert.NotNil(t, page.Logs)
	assert.Empty(t, page.Logs)
	assert.Equal(t, models.LogTotals{}, page.LogTotals)
	assert.Empty(t, repo.sumIDs)
	assert.Nil(t, page.StartDate)
	assert.Nil(t, page.EndDate)
}

func TestList_PropagatesStorageError(t *testing.T) {
	repo := &fakeRepo{listErr: errors.New("boom")}
	svc := newService(repo, nil)

	_, err := svc.List(context.Background(), models.Caller{AccessLevel: models.AccessAdmin}, models.Filter{})
	assert.EqualError(t, err, "boom")
}

func TestList_InvalidCallerIdentity(t *testing.T) {
	svc := newService(&fakeRepo{}, nil)
	_, err := svc.List(context.Background(), models.Caller{ID: "U1", AccessLevel: models.AccessUser}, models.Filter{})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
}

func TestGet(t *testing.T) {
	me := primitive.NewObjectID()
	v := view(me)
	repo := &fakeRepo{view: &v}
	svc := newService(repo, nil)

	got, err := svc.Get(context.Background(), models.Caller{ID: me.Hex(), AccessLevel: models.AccessUser}, v.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)
	assert.Equal(t, bson.D{{Key: "$match", Value: bson.D{{Key: "worker", Value: me}}}}, repo.lastPipe[0])

	repo.view = nil
	_, err = svc.Get(context.Background(), models.Caller{ID: me.Hex(), AccessLevel: models.AccessUser}, v.ID.Hex())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = svc.Get(context.Background(), models.Caller{AccessLevel: models.AccessAdmin}, "bad")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestCreate_PresentDerivesOvertime(t *testing.T) {
	worker := primitive.NewObjectID()
	repo := &fakeRepo{}
	svc := newService(repo, fakeWorkers{worker: true})

	entry, err := svc.Create(context.Background(), models.LogInput{
		Worker:        str(worker.Hex()),
		Date:          str("2024-05-10"),
		StartingTime:  str("08:00"),
		FinishingTime: str("18:30"),
		Payment:       num(40),
	})
	require.NoError(t, err)

	assert.Same(t, repo.inserted, entry)
	assert.False(t, entry.ID.IsZero())
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), entry.Date)
	assert.Equal(t, 2.5, entry.OTV)
	assert.Equal(t, 40.0, entry.Payment)
	assert.Equal(t, fixedNow, entry.CreatedAt)
}

func TestCreate_ShiftAcrossMidnight(t *testing.T) {
	worker := primitive.NewObjectID()
	svc := newService(&fakeRepo{}, fakeWorkers{worker: true})

	entry, err := svc.Create(context.Background(), models.LogInput{
		Worker: str(worker.Hex()), Date: str("2024-05-10"),
		StartingTime: str("22:00"), FinishingTime: str("04:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, -2.0, entry.OTV)
}

func TestCreate_ExplicitOTVWins(t *testing.T) {
	worker := primitive.NewObjectID()
	svc := newService(&fakeRepo{}, fakeWorkers{worker: true})

	entry, err := svc.Create(context.Background(), models.LogInput{
		Worker: str(worker.Hex()), Date: str("2024-05-10"),
		StartingTime: str("08:00"), FinishingTime: str("20:00"), OTV: num(1),
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, entry.OTV)
}

func TestCreate_AbsentNeedsNoTimes(t *testing.T) {
	worker := primitive.NewObjectID()
	svc := newService(&fakeRepo{}, fakeWorkers{worker: true})

	entry, err := svc.Create(context.Background(), models.LogInput{
		Worker: str(worker.Hex()), Date: str("2024-05-10"), IsAbsent: flag(true),
		StartingTime: str("08:00"),
	})
	require.NoError(t, err)
	assert.True(t, entry.IsAbsent)
	assert.Empty(t, entry.StartingTime)
	assert.Zero(t, entry.OTV)
}

func TestCreate_Validation(t *testing.T) {
	worker := primitive.NewObjectID()
	svc := newService(&fakeRepo{}, fakeWorkers{worker: true})

	cases := map[string]models.LogInput{
		"missing date":   {Worker: str(worker.Hex()), StartingTime: str("08:00"), FinishingTime: str("17:00")},
		"missing worker": {Date: str("2024-05-10"), StartingTime: str("08:00"), FinishingTime: str("17:00")},
		"missing times":  {Worker: str(worker.Hex()), Date: str("2024-05-10")},
		"not absent":     {Worker: str(worker.Hex()), Date: str("2024-05-10"), IsAbsent: flag(false), StartingTime: str("08:00")},
		"bad clock":      {Worker: str(worker.Hex()), Date: str("2024-05-10"), StartingTime: str("8am"), FinishingTime: str("17:00")},
		"bad date":       {Worker: str(worker.Hex()), Date: str("10/05/2024"), StartingTime: str("08:00"), FinishingTime: str("17:00")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), in)
			assert.True(t, apperror.Is(err, apperror.KindValidation), "got %v", err)
		})
	}
}

func TestCreate_UnknownWorker(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(repo, fakeWorkers{})

	_, err := svc.Create(context.Background(), models.LogInput{
		Worker: str(primitive.NewObjectID().Hex()), Date: str("2024-05-10"), IsAbsent: flag(true),
	})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = svc.Create(context.Background(), models.LogInput{
		Worker: str("nope"), Date: str("2024-05-10"), IsAbsent: flag(true),
	})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Nil(t, repo.inserted)
}

func TestUpdate_PartialPatch(t *testing.T) {
	repo := &fakeRepo{updated: true}
	svc := newService(repo, nil)

	err := svc.Update(context.Background(), primitive.NewObjectID().Hex(), models.LogInput{
		StartingTime: str("07:00"), FinishingTime: str("16:00"), ExtraNotes: str("late bus"),
	})
	require.NoError(t, err)

	set := repo.set.Map()
	assert.Equal(t, "07:00", set["startingTime"])
	assert.Equal(t, "16:00", set["finishingTime"])
	assert.Equal(t, 1.0, set["OTV"])
	assert.Equal(t, "late bus", set["extraNotes"])
	assert.Equal(t, fixedNow, set["updatedAt"])
	assert.NotContains(t, set, "worker")
	assert.NotContains(t, set, "payment")
}

func TestUpdate_MarkAbsentClearsOvertime(t *testing.T) {
	repo := &fakeRepo{updated: true}
	svc := newService(repo, nil)

	err := svc.Update(context.Background(), primitive.NewObjectID().Hex(), models.LogInput{IsAbsent: flag(true)})
	require.NoError(t, err)

	set := repo.set.Map()
	assert.Equal(t, true, set["isAbsent"])
	assert.Equal(t, 0.0, set["OTV"])
}

func TestUpdate_RequiresHoursWhenPresent(t *testing.T) {
	repo := &fakeRepo{updated: true}
	svc := newService(repo, nil)

	err := svc.Update(context.Background(), primitive.NewObjectID().Hex(), models.LogInput{Payment: num(3)})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Nil(t, repo.set)
}

func TestUpdate_NotFound(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(repo, nil)

	err := svc.Update(context.Background(), primitive.NewObjectID().Hex(), models.LogInput{IsAbsent: flag(true)})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	err = svc.Update(context.Background(), "xyz", models.LogInput{IsAbsent: flag(true)})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestUpdate_UnknownWorker(t *testing.T) {
	repo := &fakeRepo{updated: true}
	svc := newService(repo, fakeWorkers{})

	err := svc.Update(context.Background(), primitive.NewObjectID().Hex(), models.LogInput{
		Worker: str(primitive.NewObjectID().Hex()), IsAbsent: flag(true),
	})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Nil(t, repo.set)
}

func TestDelete(t *testing.T) {
	id := primitive.NewObjectID()
	repo := &fakeRepo{exists: true, deleted: true}
	svc := newService(repo, nil)

	require.NoError(t, svc.Delete(context.Background(), id.Hex()))
	assert.Equal(t, id, repo.deletedID)

	repo.exists = false
	err := svc.Delete(context.Background(), id.Hex())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	err = svc.Delete(context.Background(), "bad")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestOvertime(t *testing.T) {
	assert.Equal(t, 0.0, overtime("08:00", "16:00", 8))
	assert.Equal(t, 0.25, overtime("08:00", "16:15", 8))
	assert.Equal(t, -8.0, overtime("08:00", "08:00", 8))
	assert.Equal(t, 0.0, overtime("bad", "16:00", 8))
}
