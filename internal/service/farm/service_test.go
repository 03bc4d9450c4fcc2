package farm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockwise/internal/domain/models"
	"github.com/mamadbah2/stockwise/internal/repository/memory"
)

func newEmptyService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Save(ctx, LivestockSlot, []byte(`[]`)))
	require.NoError(t, store.Save(ctx, PenSlot, []byte(`[]`)))

	svc, err := NewService(ctx, store, zap.NewNop())
	require.NoError(t, err)
	return svc, store
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func cow(penID, tag string) models.Livestock {
	return models.Livestock{
		Category: models.CategoryMega,
		PenID:    penID,
		Details: models.Individual{
			Tag:       tag,
			Breed:     "Holstein",
			BirthDate: day(2022, time.June, 15),
			Gender:    models.GenderFemale,
		},
	}
}

func sheep(penID, tag string) models.Livestock {
	return models.Livestock{
		Category: models.CategoryMid,
		PenID:    penID,
		Details: models.Individual{
			Tag:       tag,
			Breed:     "Merino",
			BirthDate: day(2023, time.February, 20),
			Gender:    models.GenderMale,
		},
	}
}

func chickens(penID string, qty int) models.Livestock {
	return models.Livestock{
		Category: models.CategoryMini,
		PenID:    penID,
		Details:  models.Batch{BatchID: "BATCH-7", Strain: "Leghorn", Quantity: qty},
	}
}

func TestNewServiceSeedsEmptyStore(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	svc, err := NewService(ctx, store, nil)
	require.NoError(t, err)

	assert.Len(t, svc.ListLivestock(), 2)
	assert.Len(t, svc.ListPens(), 2)

	payload, found, err := store.Load(ctx, LivestockSlot)
	require.NoError(t, err)
	require.True(t, found)

	var stored []models.Livestock
	require.NoError(t, json.Unmarshal(payload, &stored))
	assert.Len(t, stored, 2)

	_, found, err = store.Load(ctx, PenSlot)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestNewServiceFallsBackOnCorruptSlots(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: `{{{`},
		{name: "unknown category", payload: `[{"id":"a","livestockType":"Giant Stock"}]`},
		{name: "missing required field", payload: `[{"id":"a","livestockType":"Mega Stock","animalId":"COW-1","breed":"Angus","gender":"Male"}]`},
		{name: "batch without quantity", payload: `[{"id":"a","livestockType":"Mini Stock","animalId":"B-1","breed":"Leghorn"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := memory.New()
			require.NoError(t, store.Save(ctx, LivestockSlot, []byte(tt.payload)))
			require.NoError(t, store.Save(ctx, PenSlot, []byte(`[]`)))

			svc, err := NewService(ctx, store, nil)
			require.NoError(t, err)

			defaults, err := DefaultDataset()
			require.NoError(t, err)
			assert.Len(t, svc.ListLivestock(), len(defaults.Livestock))
			assert.Empty(t, svc.ListPens())

			// the corrupt payload is left in place until the next mutation
			payload, _, err := store.Load(ctx, LivestockSlot)
			require.NoError(t, err)
			assert.Equal(t, tt.payload, string(payload))
		})
	}
}

func TestNewServiceRequiresStore(t *testing.T) {
	_, err := NewService(context.Background(), nil, nil)
	require.Error(t, err)
}

func TestFirstAnimalRestrictsFlexiblePen(t *testing.T) {
	ctx := context.Background()

	for _, animal := range []models.Livestock{cow("", "COW-9"), sheep("", "SHEEP-1"), chickens("", 40)} {
		t.Run(string(animal.Category), func(t *testing.T) {
			svc, _ := newEmptyService(t)
			pen, err := svc.AddPen(ctx, models.Pen{Name: "North"})
			require.NoError(t, err)
			require.True(t, pen.Flexible())

			animal.PenID = pen.ID
			_, err = svc.AddLivestock(ctx, animal)
			require.NoError(t, err)

			got, err := svc.GetPenByID(pen.ID)
			require.NoError(t, err)
			require.NotNil(t, got.AllowedCategory)
			assert.Equal(t, animal.Category, *got.AllowedCategory)
		})
	}
}

func TestRestrictedPenRejectsOtherCategories(t *testing.T) {
	for _, allowed := range models.Categories {
		pen := models.Pen{ID: "p", Name: "P", AllowedCategory: models.CategoryPtr(allowed)}
		for _, target := range models.Categories {
			assert.Equal(t, allowed == target, IsPenEligible(pen, nil, target), "allowed=%s target=%s", allowed, target)
		}
	}
}

func TestIsPenEligibleFlexiblePen(t *testing.T) {
	pen := models.Pen{ID: "p", Name: "P"}

	assert.True(t, IsPenEligible(pen, nil, models.CategoryMicro))
	assert.True(t, IsPenEligible(pen, []models.Livestock{cow("p", "A")}, models.CategoryMega))
	assert.False(t, IsPenEligible(pen, []models.Livestock{cow("p", "A")}, models.CategoryMini))
}

func TestAddLivestockInitializesRecord(t *testing.T) {
	ctx := context.Background()
	svc, _ := newEmptyService(t)

	input := cow("", "COW-1")
	input.ActivityLogs = []models.ActivityLog{{ID: "x", Date: day(2024, 1, 1), Type: models.ActivityOther, Description: "ignored"}}

	created, err := svc.AddLivestock(ctx, input)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Empty(t, created.ActivityLogs)
	assert.Empty(t, created.ImportantDates)

	second, err := svc.AddLivestock(ctx, cow("", "COW-2"))
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, second.ID)

	got, err := svc.GetLivestockByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestAddLivestockRejectsMismatchedVariant(t *testing.T) {
	ctx := context.Background()
	svc, _ := newEmptyService(t)

	bad := cow("", "COW-1")
	bad.Category = models.CategoryMini

	_, err := svc.AddLivestock(ctx, bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidLivestock)
	assert.Empty(t, svc.ListLivestock())
}

func TestMixedFlexiblePenStaysUnrestricted(t *testing.T) {
	ctx := context.Background()
	svc, _ := newEmptyService(t)

	pen, err := svc.AddPen(ctx, models.Pen{Name: "Shared"})
	require.NoError(t, err)
	_, err = svc.AddLivestock(ctx, cow(pen.ID, "COW-1"))
	require.NoError(t, err)

	// clear the inferred restriction by hand, then add a different category
	pen.AllowedCategory = nil
	_, err = svc.UpdatePen(ctx, pen)
	require.NoError(t, err)

	_, err = svc.AddLivestock(ctx, sheep(pen.ID, "SHEEP-1"))
	require.NoError(t, err)

	got, err := svc.GetPenByID(pen.ID)
	require.NoError(t, err)
	assert.True(t, got.Flexible())
	assert.Len(t, svc.GetLivestockInPen(pen.ID), 2)
}

func TestActivityLogsSortedNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, _ := newEmptyService(t)

	animal, err := svc.AddLivestock(ctx, cow("", "COW-1"))
	require.NoError(t, err)

	for _, d := range []time.Time{day(2024, 3, 1), day(2024, 1, 1), day(2024, 5, 1), day(2024, 2, 1)} {
		entry, err := svc.AddActivityLog(ctx, animal.ID, models.ActivityLog{Date: d, Type: models.ActivityFeeding, Description: "hay"})
		require.NoError(t, err)
		assert.NotEmpty(t, entry.ID)
	}

	got, err := svc.GetLivestockByID(animal.ID)
	require.NoError(t, err)
	require.Len(t, got.ActivityLogs, 4)
	for i := 1; i < len(got.ActivityLogs); i++ {
		assert.True(t, got.ActivityLogs[i-1].Date.After(got.ActivityLogs[i].Date))
	}
}

func TestImportantDatesSortedEarliestFirst(t *testing.T) {
	ctx := context.Background()
	svc, _ := newEmptyService(t)

	animal, err := svc.AddLivestock(ctx, chickens("", 12))
	require.NoError(t, err)

	for _, d := range []time.Time{day(2025, 9, 1), day(2025, 3, 1), day(2025, 6, 1)} {
		_, err := svc.AddImportantDate(ctx, animal.ID, models.ImportantDate{Date: d, EventName: "Check"})
		require.NoError(t, err)
	}

	got, err := svc.GetLivestockByID(animal.ID)
	require.NoError(t, err)
	require.Len(t, got.ImportantDates, 3)
	for i := 1; i < len(got.ImportantDates); i++ {
		assert.True(t, got.ImportantDates[i-1].Date.Before(got.ImportantDates[i].Date))
	}
}

func TestBulkActivityLogFansOut(t *testing.T) {
	ctx := context.Background()
	svc, _ := newEmptyService(t)

	pen, err := svc.AddPen(ctx, models.Pen{Name: "Barn"})
	require.NoError(t, err)
	other, err := svc.AddPen(ctx, models.Pen{Name: "Field"})
	require.NoError(t, err)

	for _, tag := range []string{"COW-1", "COW-2", "COW-3"} {
		_, err := svc.AddLivestock(ctx, cow(pen.ID, tag))
		require.NoError(t, err)
	}
	outsider, err := svc.AddLivestock(ctx, cow(other.ID, "COW-4"))
	require.NoError(t, err)

	entry := models.ActivityLog{Date: day(2024, 4, 2), Type: models.ActivityVaccination, Description: "Annual booster"}
	created, err := svc.AddBulkActivityLogToPen(ctx, pen.ID, entry)
	require.NoError(t, err)
	require.Len(t, created, 3)

	ids := map[string]struct{}{}
	for _, log := range created {
		ids[log.ID] = struct{}{}
		assert.True(t, entry.Date.Equal(log.Date))
		assert.Equal(t, entry.Type, log.Type)
		assert.Equal(t, entry.Description, log.Description)
	}
	assert.Len(t, ids, 3)

	for _, animal := range svc.GetLivestockInPen(pen.ID) {
		require.Len(t, animal.ActivityLogs, 1)
		_, ok := ids[animal.ActivityLogs[0].ID]
		assert.True(t, ok)
	}

	untouched, err := svc.GetLivestockByID(outsider.ID)
	require.NoError(t, err)
	assert.Empty(t, untouched.ActivityLogs)
}

func TestBulkActivityLogEmptyPen(t *testing.T) {
	ctx := context.Background()
	svc, _ := newEmptyService(t)

	pen, err := svc.AddPen(ctx, models.Pen{Name: "Empty"})
	require.NoError(t, err)

	created, err := svc.AddBulkActivityLogToPen(ctx, pen.ID, models.ActivityLog{Date: day(2024, 1, 1), Type: models.ActivityObservation, Description: "quiet"})
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestStoreRoundTripReproducesState(t *testing.T) {
	ctx := context.Background()
	svc, store := newEmptyService(t)

	pen, err := svc.AddPen(ctx, models.Pen{Name: "Coop", Description: "Layers"})
	require.NoError(t, err)
	flock, err := svc.AddLivestock(ctx, chickens(pen.ID, 30))
	require.NoError(t, err)
	start := day(2024, 2, 1)
	batch := flock.Details.(models.Batch)
	batch.StartDate = &start
	flock.Details = batch
	flock.HealthRecords = "Vaccinated against Marek's."
	_, err = svc.UpdateLivestock(ctx, flock)
	require.NoError(t, err)

	animal, err := svc.AddLivestock(ctx, cow("", "COW-1"))
	require.NoError(t, err)
	_, err = svc.AddActivityLog(ctx, animal.ID, models.ActivityLog{Date: day(2024, 3, 3), Type: models.ActivityMedication, Description: "Dewormer"})
	require.NoError(t, err)
	_, err = svc.AddImportantDate(ctx, animal.ID, models.ImportantDate{Date: day(2024, 9, 9), EventName: "Calving", Notes: "Watch closely"})
	require.NoError(t, err)

	reloaded, err := NewService(ctx, store, nil)
	require.NoError(t, err)

	if diff := cmp.Diff(svc.ListLivestock(), reloaded.ListLivestock()); diff != "" {
		t.Errorf("livestock mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(svc.ListPens(), reloaded.ListPens()); diff != "" {
		t.Errorf("pens mismatch (-want +got):\n%s", diff)
	}
}

func TestEndToEndPenRestriction(t *testing.T) {
	ctx := context.Background()
	svc, _ := newEmptyService(t)

	penA, err := svc.AddPen(ctx, models.Pen{Name: "Pen A"})
	require.NoError(t, err)
	assert.Nil(t, penA.AllowedCategory)

	created, err := svc.AddLivestock(ctx, models.Livestock{
		Category: models.CategoryMega,
		PenID:    penA.ID,
		Details: models.Individual{
			Tag:       "COW-001",
			Breed:     "Holstein",
			BirthDate: day(2022, time.June, 15),
			Gender:    models.GenderFemale,
		},
	})
	require.NoError(t, err)
	assert.Empty(t, created.ActivityLogs)
	assert.Empty(t, created.ImportantDates)

	penA, err = svc.GetPenByID(penA.ID)
	require.NoError(t, err)
	require.NotNil(t, penA.AllowedCategory)
	assert.Equal(t, models.CategoryMega, *penA.AllowedCategory)

	penB, err := svc.AddPen(ctx, models.Pen{Name: "Pen B"})
	require.NoError(t, err)

	eligible := svc.EligiblePens(models.CategoryMini)
	ids := make([]string, 0, len(eligible))
	for _, p := range eligible {
		ids = append(ids, p.ID)
	}
	assert.NotContains(t, ids, penA.ID)
	assert.Contains(t, ids, penB.ID)

	_, err = svc.AddLivestockChecked(ctx, chickens(penA.ID, 20))
	assert.ErrorIs(t, err, ErrIncompatiblePen)
}

func TestMissingIdentifiersReportNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newEmptyService(t)
	entry := models.ActivityLog{Date: day(2024, 1, 1), Type: models.ActivityOther, Description: "x"}

	ghost := cow("", "GHOST")
	ghost.ID = "missing"

	tests := []struct {
		name string
		call func() error
	}{
		{"get livestock", func() error { _, err := svc.GetLivestockByID("missing"); return err }},
		{"update livestock", func() error { _, err := svc.UpdateLivestock(ctx, ghost); return err }},
		{"add livestock to unknown pen", func() error { _, err := svc.AddLivestock(ctx, cow("missing", "COW-1")); return err }},
		{"activity log", func() error { _, err := svc.AddActivityLog(ctx, "missing", entry); return err }},
		{"important date", func() error {
			_, err := svc.AddImportantDate(ctx, "missing", models.ImportantDate{Date: day(2024, 1, 1), EventName: "x"})
			return err
		}},
		{"bulk log", func() error { _, err := svc.AddBulkActivityLogToPen(ctx, "missing", entry); return err }},
		{"get pen", func() error { _, err := svc.GetPenByID("missing"); return err }},
		{"update pen", func() error { _, err := svc.UpdatePen(ctx, models.Pen{ID: "missing", Name: "x"}); return err }},
		{"checked update livestock", func() error { _, err := svc.UpdateLivestockChecked(ctx, ghost); return err }},
		{"checked add to unknown pen", func() error { _, err := svc.AddLivestockChecked(ctx, cow("missing", "COW-1")); return err }},
		{"set image", func() error { _, err := svc.SetImage(ctx, "missing", "/images/x.png"); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), ErrNotFound)
		})
	}
}

func TestReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	svc, _ := newEmptyService(t)

	animal, err := svc.AddLivestock(ctx, cow("", "COW-1"))
	require.NoError(t, err)
	_, err = svc.AddActivityLog(ctx, animal.ID, models.ActivityLog{Date: day(2024, 1, 1), Type: models.ActivityFeeding, Description: "hay"})
	require.NoError(t, err)

	got, err := svc.GetLivestockByID(animal.ID)
	require.NoError(t, err)
	got.ActivityLogs[0].Description = "tampered"

	again, err := svc.GetLivestockByID(animal.ID)
	require.NoError(t, err)
	assert.Equal(t, "hay", again.ActivityLogs[0].Description)
}

func TestPenCounts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newEmptyService(t)

	pen, err := svc.AddPen(ctx, models.Pen{Name: "Barn"})
	require.NoError(t, err)
	empty, err := svc.AddPen(ctx, models.Pen{Name: "Empty"})
	require.NoError(t, err)
	_, err = svc.AddLivestock(ctx, cow(pen.ID, "A"))
	require.NoError(t, err)
	_, err = svc.AddLivestock(ctx, cow(pen.ID, "B"))
	require.NoError(t, err)
	_, err = svc.AddLivestock(ctx, cow("", "C"))
	require.NoError(t, err)

	counts := map[string]int{}
	for _, occ := range svc.PenCounts() {
		counts[occ.Pen.ID] = occ.Count
	}
	assert.Equal(t, map[string]int{pen.ID: 2, empty.ID: 0}, counts)

	livestock, pens := svc.Totals()
	assert.Equal(t, 3, livestock)
	assert.Equal(t, 2, pens)
}

type failingStore struct {
	*memory.Store
}

func (failingStore) Save(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestPersistFailureIsReported(t *testing.T) {
	ctx := context.Background()
	base := memory.New()
	require.NoError(t, base.Save(ctx, LivestockSlot, []byte(`[]`)))
	require.NoError(t, base.Save(ctx, PenSlot, []byte(`[]`)))

	svc, err := NewService(ctx, failingStore{base}, nil)
	require.NoError(t, err)

	_, err = svc.AddPen(ctx, models.Pen{Name: "Barn"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestAddLivestockChecked(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func(t *testing.T, svc *Service) string
		animal  func(penID string) models.Livestock
		wantErr error
	}{
		{
			name: "restricted pen rejects other category",
			setup: func(t *testing.T, svc *Service) string {
				pen, err := svc.AddPen(ctx, models.Pen{Name: "Cows", AllowedCategory: models.CategoryPtr(models.CategoryMega)})
				require.NoError(t, err)
				return pen.ID
			},
			animal:  func(penID string) models.Livestock { return chickens(penID, 20) },
			wantErr: ErrIncompatiblePen,
		},
		{
			name: "flexible pen rejects category other than occupants",
			setup: func(t *testing.T, svc *Service) string {
				pen, err := svc.AddPen(ctx, models.Pen{Name: "Mixed"})
				require.NoError(t, err)
				animal, err := svc.AddLivestock(ctx, cow("", "COW-1"))
				require.NoError(t, err)
				animal.PenID = pen.ID
				_, err = svc.UpdateLivestock(ctx, animal)
				require.NoError(t, err)
				return pen.ID
			},
			animal:  func(penID string) models.Livestock { return sheep(penID, "SHEEP-1") },
			wantErr: ErrIncompatiblePen,
		},
		{
			name: "matching category is accepted",
			setup: func(t *testing.T, svc *Service) string {
				pen, err := svc.AddPen(ctx, models.Pen{Name: "Cows", AllowedCategory: models.CategoryPtr(models.CategoryMega)})
				require.NoError(t, err)
				return pen.ID
			},
			animal: func(penID string) models.Livestock { return cow(penID, "COW-2") },
		},
		{
			name:   "no pen is accepted",
			setup:  func(*testing.T, *Service) string { return "" },
			animal: func(penID string) models.Livestock { return chickens(penID, 5) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newEmptyService(t)
			penID := tt.setup(t, svc)
			before := len(svc.ListLivestock())

			_, err := svc.AddLivestockChecked(ctx, tt.animal(penID))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Len(t, svc.ListLivestock(), before)
				return
			}
			require.NoError(t, err)
			assert.Len(t, svc.ListLivestock(), before+1)
		})
	}
}

func TestAddLivestockCheckedConcurrentKeepsPenUniform(t *testing.T) {
	ctx := context.Background()
	svc, _ := newEmptyService(t)
	pen, err := svc.AddPen(ctx, models.Pen{Name: "Open"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			animal := cow(pen.ID, "COW")
			if i%2 == 1 {
				animal = chickens(pen.ID, 10)
			}
			_, _ = svc.AddLivestockChecked(ctx, animal)
		}(i)
	}
	wg.Wait()

	occupants := svc.GetLivestockInPen(pen.ID)
	require.NotEmpty(t, occupants)
	for _, animal := range occupants {
		assert.Equal(t, occupants[0].Category, animal.Category)
	}
}

func TestUpdateLivestockChecked(t *testing.T) {
	ctx := context.Background()

	t.Run("category change in restricted pen is rejected", func(t *testing.T) {
		svc, _ := newEmptyService(t)
		pen, err := svc.AddPen(ctx, models.Pen{Name: "Cows"})
		require.NoError(t, err)
		animal, err := svc.AddLivestock(ctx, cow(pen.ID, "COW-1"))
		require.NoError(t, err)

		changed := chickens(pen.ID, 20)
		changed.ID = animal.ID
		_, err = svc.UpdateLivestockChecked(ctx, changed)
		assert.ErrorIs(t, err, ErrIncompatiblePen)

		got, err := svc.GetLivestockByID(animal.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CategoryMega, got.Category)
	})

	t.Run("sole occupant of flexible pen may change category", func(t *testing.T) {
		svc, _ := newEmptyService(t)
		pen, err := svc.AddPen(ctx, models.Pen{Name: "Open"})
		require.NoError(t, err)
		animal, err := svc.AddLivestock(ctx, cow("", "COW-1"))
		require.NoError(t, err)
		animal.PenID = pen.ID
		_, err = svc.UpdateLivestockChecked(ctx, animal)
		require.NoError(t, err)

		changed := chickens(pen.ID, 20)
		changed.ID = animal.ID
		updated, err := svc.UpdateLivestockChecked(ctx, changed)
		require.NoError(t, err)
		assert.Equal(t, models.CategoryMini, updated.Category)
	})

	t.Run("unchanged pen and category skip the check", func(t *testing.T) {
		svc, _ := newEmptyService(t)
		pen, err := svc.AddPen(ctx, models.Pen{Name: "Open"})
		require.NoError(t, err)
		first, err := svc.AddLivestock(ctx, cow("", "COW-1"))
		require.NoError(t, err)
		second, err := svc.AddLivestock(ctx, sheep("", "SHEEP-1"))
		require.NoError(t, err)
		for _, animal := range []models.Livestock{first, second} {
			animal.PenID = pen.ID
			_, err = svc.UpdateLivestock(ctx, animal)
			require.NoError(t, err)
		}

		first.PenID = pen.ID
		first.HealthRecords = "Checked by vet."
		_, err = svc.UpdateLivestockChecked(ctx, first)
		assert.NoError(t, err)
	})
}

type livestockSlotFailingStore struct {
	*memory.Store
}

func (s livestockSlotFailingStore) Save(ctx context.Context, key string, payload []byte) error {
	if key == LivestockSlot {
		return errors.New("disk full")
	}
	return s.Store.Save(ctx, key, payload)
}

func TestFailedLivestockSaveLeavesPenFlexible(t *testing.T) {
	ctx := context.Background()
	base := memory.New()
	require.NoError(t, base.Save(ctx, LivestockSlot, []byte(`[]`)))
	require.NoError(t, base.Save(ctx, PenSlot, []byte(`[]`)))

	svc, err := NewService(ctx, livestockSlotFailingStore{base}, nil)
	require.NoError(t, err)

	pen, err := svc.AddPen(ctx, models.Pen{Name: "Barn"})
	require.NoError(t, err)

	_, err = svc.AddLivestock(ctx, cow(pen.ID, "COW-1"))
	require.Error(t, err)

	got, err := svc.GetPenByID(pen.ID)
	require.NoError(t, err)
	assert.True(t, got.Flexible())

	payload, found, err := base.Load(ctx, PenSlot)
	require.NoError(t, err)
	require.True(t, found)
	var stored []models.Pen
	require.NoError(t, json.Unmarshal(payload, &stored))
	require.Len(t, stored, 1)
	assert.Nil(t, stored[0].AllowedCategory)
}
