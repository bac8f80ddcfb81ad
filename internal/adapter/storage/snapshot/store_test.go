package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/mocks"
	"github.com/seu-repo/imob-crm/internal/ports"
)

func openStore(t *testing.T, backend *mocks.MockSnapshotStore) (*Store, *mocks.MockIDAllocator) {
	t.Helper()
	ids := mocks.NewMockIDAllocator()
	s, err := Open(context.Background(), backend, ids, zap.NewNop())
	require.NoError(t, err)
	return s, ids
}

func TestOpen_EmptyBackend(t *testing.T) {
	s, _ := openStore(t, mocks.NewMockSnapshotStore())

	leads, err := s.Leads().FindAll(context.Background(), domain.LeadFilter{})

	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestOpen_RevivesDatesAndSeedsIDs(t *testing.T) {
	backend := mocks.NewMockSnapshotStore()
	backend.Put(ports.KeyLeads, []byte(`[
		{"id":"L4821","name":"Jeanne Martin","status":"Qualifié","source":"Site web",
		 "createdAt":"2024-03-01T10:00:00Z","lastContact":"2024-03-05T09:30:00Z"}
	]`))
	backend.Put(ports.KeyClients, []byte(`[{"id":"C0007","name":"Paul","status":"Vendu","source":"Salon",
		"createdAt":"2024-01-01T00:00:00Z","lastContact":"2024-01-01T00:00:00Z","clientSince":"2024-02-01T00:00:00Z"}]`))
	backend.Put(ports.KeyUsers, []byte(`[{"id":"U012","name":"Admin","email":"a@b.fr","role":"Super Admin","status":"Active","permissions":[]}]`))

	s, ids := openStore(t, backend)

	lead, err := s.Leads().FindByID(context.Background(), "L4821")
	require.NoError(t, err)
	require.NotNil(t, lead)
	assert.Equal(t, time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC), lead.LastContact.UTC())
	assert.Equal(t, int64(4821), ids.Current(domain.PrefixLead))
	assert.Equal(t, int64(7), ids.Current(domain.PrefixClient))
	assert.Equal(t, int64(12), ids.Current(domain.PrefixUser))
	assert.Equal(t, int64(0), ids.Current(domain.PrefixTask))
}

func TestOpen_CorruptSnapshot(t *testing.T) {
	backend := mocks.NewMockSnapshotStore()
	backend.Put(ports.KeyTasks, []byte(`{not json`))

	_, err := Open(context.Background(), backend, mocks.NewMockIDAllocator(), zap.NewNop())

	assert.Error(t, err)
}

func TestCreateWithClient_SingleAtomicSave(t *testing.T) {
	backend := mocks.NewMockSnapshotStore()
	var saved []string
	backend.SaveFunc = func(ctx context.Context, snaps ...ports.Snapshot) error {
		for _, s := range snaps {
			saved = append(saved, s.Key)
		}
		return nil
	}
	s, _ := openStore(t, backend)

	lead := &domain.Lead{ID: "L0001", Name: "Jeanne", Status: domain.LeadStatusNew}
	client := &domain.Client{Lead: domain.Lead{ID: "C0001", Name: "Jeanne", ClientType: domain.ClientTypeProspect}}
	err := s.Leads().CreateWithClient(context.Background(), lead, client)

	require.NoError(t, err)
	assert.Equal(t, 1, backend.SaveCalls)
	assert.ElementsMatch(t, []string{ports.KeyLeads, ports.KeyClients}, saved)
}

func TestCreateWithClient_RollsBackOnSaveError(t *testing.T) {
	backend := mocks.NewMockSnapshotStore()
	s, _ := openStore(t, backend)
	backend.SaveFunc = func(ctx context.Context, snaps ...ports.Snapshot) error {
		return errors.New("disk full")
	}
	ctx := context.Background()

	err := s.Leads().CreateWithClient(ctx,
		&domain.Lead{ID: "L0001", Name: "Jeanne"},
		&domain.Client{Lead: domain.Lead{ID: "C0001", Name: "Jeanne"}},
	)

	require.Error(t, err)
	leads, _ := s.Leads().FindAll(ctx, domain.LeadFilter{})
	clients, _ := s.Clients().FindAll(ctx, domain.LeadFilter{})
	assert.Empty(t, leads)
	assert.Empty(t, clients)
}

func TestConvert_MovesLeadToClients(t *testing.T) {
	backend := mocks.NewMockSnapshotStore()
	s, _ := openStore(t, backend)
	ctx := context.Background()
	require.NoError(t, s.Leads().Create(ctx, &domain.Lead{ID: "L0001", Name: "Jeanne"}))

	found, err := s.Leads().Convert(ctx, "L0001", &domain.Client{Lead: domain.Lead{ID: "C0002", Name: "Jeanne", Status: domain.LeadStatusWon}})

	require.NoError(t, err)
	assert.True(t, found)

	var storedLeads []domain.Lead
	require.NoError(t, json.Unmarshal(backend.Get(ports.KeyLeads), &storedLeads))
	assert.Empty(t, storedLeads)

	var storedClients []domain.Client
	require.NoError(t, json.Unmarshal(backend.Get(ports.KeyClients), &storedClients))
	require.Len(t, storedClients, 1)
	assert.Equal(t, "C0002", storedClients[0].ID)
}

func TestConvert_MissingLeadWritesNothing(t *testing.T) {
	backend := mocks.NewMockSnapshotStore()
	s, _ := openStore(t, backend)

	found, err := s.Leads().Convert(context.Background(), "L9999", &domain.Client{Lead: domain.Lead{ID: "C0001"}})

	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, backend.SaveCalls)
}

func TestConvert_RollsBackOnSaveError(t *testing.T) {
	backend := mocks.NewMockSnapshotStore()
	s, _ := openStore(t, backend)
	ctx := context.Background()
	require.NoError(t, s.Leads().Create(ctx, &domain.Lead{ID: "L0001", Name: "Jeanne"}))
	backend.SaveFunc = func(ctx context.Context, snaps ...ports.Snapshot) error {
		return errors.New("connection reset")
	}

	_, err := s.Leads().Convert(ctx, "L0001", &domain.Client{Lead: domain.Lead{ID: "C0001"}})

	require.Error(t, err)
	lead, _ := s.Leads().FindByID(ctx, "L0001")
	assert.NotNil(t, lead)
	client, _ := s.Clients().FindByID(ctx, "C0001")
	assert.Nil(t, client)
}

func TestFindByID_ReturnsCopy(t *testing.T) {
	s, _ := openStore(t, mocks.NewMockSnapshotStore())
	ctx := context.Background()
	score := 40
	require.NoError(t, s.Leads().Create(ctx, &domain.Lead{ID: "L0001", Name: "Jeanne", Score: &score}))

	got, _ := s.Leads().FindByID(ctx, "L0001")
	got.Name = "Changed"
	*got.Score = 99

	again, _ := s.Leads().FindByID(ctx, "L0001")
	assert.Equal(t, "Jeanne", again.Name)
	assert.Equal(t, 40, *again.Score)
}

func TestLeads_NewestFirstAndFilter(t *testing.T) {
	s, _ := openStore(t, mocks.NewMockSnapshotStore())
	ctx := context.Background()
	require.NoError(t, s.Leads().Create(ctx, &domain.Lead{ID: "L0001", Name: "Jeanne Martin", Source: "Site web", Status: domain.LeadStatusNew}))
	require.NoError(t, s.Leads().Create(ctx, &domain.Lead{ID: "L0002", Name: "Paul Durand", Email: "paul@exemple.fr", Source: "Salon", Status: domain.LeadStatusQualified}))

	all, _ := s.Leads().FindAll(ctx, domain.LeadFilter{})
	require.Len(t, all, 2)
	assert.Equal(t, "L0002", all[0].ID)

	bySearch, _ := s.Leads().FindAll(ctx, domain.LeadFilter{Search: "EXEMPLE"})
	require.Len(t, bySearch, 1)
	assert.Equal(t, "L0002", bySearch[0].ID)

	bySource, _ := s.Leads().FindAll(ctx, domain.LeadFilter{Source: "site web", Status: domain.LeadStatusNew})
	require.Len(t, bySource, 1)
	assert.Equal(t, "L0001", bySource[0].ID)
}

func TestUsers_FindByEmailIsCaseInsensitive(t *testing.T) {
	s, _ := openStore(t, mocks.NewMockSnapshotStore())
	ctx := context.Background()
	require.NoError(t, s.Users().Create(ctx, &domain.User{ID: "U001", Email: "Admin@Agence.fr"}))

	u, err := s.Users().FindByEmail(ctx, " admin@agence.FR ")

	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "U001", u.ID)
	n, _ := s.Users().Count(ctx)
	assert.Equal(t, 1, n)
}

func TestTasks_DeleteAndFilter(t *testing.T) {
	s, _ := openStore(t, mocks.NewMockSnapshotStore())
	ctx := context.Background()
	require.NoError(t, s.Tasks().Create(ctx, &domain.Task{ID: "T0001", Status: domain.TaskStatusPending,
		AssociatedWith: &domain.Association{Type: domain.AssociationLead, ID: "L0001"}}))
	require.NoError(t, s.Tasks().Create(ctx, &domain.Task{ID: "T0002", Status: domain.TaskStatusCompleted}))

	linked, _ := s.Tasks().FindAll(ctx, domain.TaskFilter{LinkedTo: "L0001"})
	assert.Len(t, linked, 1)

	found, err := s.Tasks().Delete(ctx, "T0001")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.Tasks().Delete(ctx, "T0001")
	require.NoError(t, err)
	assert.False(t, found)

	rest, _ := s.Tasks().FindAll(ctx, domain.TaskFilter{})
	require.Len(t, rest, 1)
	assert.Equal(t, "T0002", rest[0].ID)
}

func TestUpdate_MissingRecordWritesNothing(t *testing.T) {
	backend := mocks.NewMockSnapshotStore()
	s, _ := openStore(t, backend)
	ctx := context.Background()
	require.NoError(t, s.Leads().Create(ctx, &domain.Lead{ID: "L0001", Name: "Jeanne"}))
	_, err := s.Leads().Convert(ctx, "L0001", &domain.Client{Lead: domain.Lead{ID: "C0001", Name: "Jeanne"}})
	require.NoError(t, err)
	calls := backend.SaveCalls

	found, err := s.Leads().Update(ctx, &domain.Lead{ID: "L0001", Name: "Jeanne", Status: domain.LeadStatusQualified})

	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, calls, backend.SaveCalls)
	lead, _ := s.Leads().FindByID(ctx, "L0001")
	assert.Nil(t, lead)

	found, err = s.Users().Update(ctx, &domain.User{ID: "U404"})
	require.NoError(t, err)
	assert.False(t, found)
	n, _ := s.Users().Count(ctx)
	assert.Equal(t, 0, n)
}

func TestCreate_RejectsTakenID(t *testing.T) {
	s, _ := openStore(t, mocks.NewMockSnapshotStore())
	ctx := context.Background()
	require.NoError(t, s.Tasks().Create(ctx, &domain.Task{ID: "T0001", Title: "Visite"}))

	err := s.Tasks().Create(ctx, &domain.Task{ID: "T0001", Title: "Autre"})

	require.Error(t, err)
	task, _ := s.Tasks().FindByID(ctx, "T0001")
	require.NotNil(t, task)
	assert.Equal(t, "Visite", task.Title)
}

func TestUsers_EmailStaysUnique(t *testing.T) {
	s, _ := openStore(t, mocks.NewMockSnapshotStore())
	ctx := context.Background()
	require.NoError(t, s.Users().Create(ctx, &domain.User{ID: "U001", Email: "marie@agence.fr"}))
	require.NoError(t, s.Users().Create(ctx, &domain.User{ID: "U002", Email: "paul@agence.fr"}))

	err := s.Users().Create(ctx, &domain.User{ID: "U003", Email: "MARIE@agence.fr"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	_, err = s.Users().Update(ctx, &domain.User{ID: "U002", Email: "marie@agence.fr"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	found, err := s.Users().Update(ctx, &domain.User{ID: "U001", Email: "Marie@Agence.fr"})
	require.NoError(t, err)
	assert.True(t, found)

	paul, _ := s.Users().FindByID(ctx, "U002")
	assert.Equal(t, "paul@agence.fr", paul.Email)
	n, _ := s.Users().Count(ctx)
	assert.Equal(t, 2, n)
}

func TestUsers_ConcurrentCreateSameEmail(t *testing.T) {
	s, _ := openStore(t, mocks.NewMockSnapshotStore())
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		errs = make([]error, 8)
	)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Users().Create(ctx, &domain.User{ID: domain.FormatID(domain.PrefixUser, int64(i+1)), Email: "same@agence.fr"})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	}
	assert.Equal(t, 1, ok)
	n, _ := s.Users().Count(ctx)
	assert.Equal(t, 1, n)
}
