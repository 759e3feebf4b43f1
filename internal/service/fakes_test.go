package service

import (
	"context"
	"errors"
	"sync"

	"releasewatch/internal/model"
)

type fakeCredentials struct {
	cred  model.Credential
	err   error
	calls int
}

func (f *fakeCredentials) Acquire(ctx context.Context) (model.Credential, error) {
	f.calls++
	if f.err != nil {
		return model.Credential{}, f.err
	}
	return f.cred, nil
}

type fakeCatalog struct {
	mu         sync.Mutex
	releases   map[string]model.SnapshotPair
	errs       map[string]error
	candidates map[string][]model.Candidate
	searchErr  error
	calls      int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		releases:   make(map[string]model.SnapshotPair),
		errs:       make(map[string]error),
		candidates: make(map[string][]model.Candidate),
	}
}

func (f *fakeCatalog) SearchArtists(ctx context.Context, name string, cred model.Credential) ([]model.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.candidates[name], nil
}

func (f *fakeCatalog) LatestRelease(ctx context.Context, artistID string, kind model.ReleaseKind, cred model.Credential) (model.ReleaseSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.errs[artistID]; err != nil {
		return model.ReleaseSnapshot{}, err
	}
	pair, ok := f.releases[artistID]
	if !ok {
		return model.EmptySnapshot(kind), nil
	}
	return pair.Get(kind), nil
}

// memoryRepository хранит записи в памяти и считает обращения
type memoryRepository struct {
	mu        sync.Mutex
	records   []model.ArtistRecord
	scanCalls int
	putCalls  int
	delCalls  int
	writes    map[string]model.SnapshotPair
	scanErr   error
	putErr    error
	deleteErr error
	updateErr map[string]error
}

func newMemoryRepository(records ...model.ArtistRecord) *memoryRepository {
	return &memoryRepository{
		records:   records,
		writes:    make(map[string]model.SnapshotPair),
		updateErr: make(map[string]error),
	}
}

func (r *memoryRepository) ScanAll(ctx context.Context) ([]model.ArtistRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scanCalls++
	if r.scanErr != nil {
		return nil, r.scanErr
	}
	out := make([]model.ArtistRecord, len(r.records))
	copy(out, r.records)
	return out, nil
}

func (r *memoryRepository) Put(ctx context.Context, artist model.MonitoredArtist) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.putCalls++
	if r.putErr != nil {
		return r.putErr
	}
	for i := range r.records {
		if r.records[i].ArtistID == artist.ID {
			r.records[i].ArtistName = artist.Name
			return nil
		}
	}
	r.records = append(r.records, *model.NewArtistRecord(artist))
	return nil
}

func (r *memoryRepository) Delete(ctx context.Context, artistID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delCalls++
	if r.deleteErr != nil {
		return r.deleteErr
	}
	for i := range r.records {
		if r.records[i].ArtistID == artistID {
			r.records = append(r.records[:i], r.records[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memoryRepository) UpdateSnapshots(ctx context.Context, artistID string, snapshots model.SnapshotPair) (model.SnapshotPair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.updateErr[artistID]; err != nil {
		return model.SnapshotPair{}, err
	}
	for i := range r.records {
		if r.records[i].ArtistID == artistID {
			previous := r.records[i].Snapshots()
			r.records[i].LastAlbum = snapshots.Album
			r.records[i].LastSingle = snapshots.Single
			r.writes[artistID] = snapshots
			return previous, nil
		}
	}
	return model.SnapshotPair{}, model.ErrArtistNotFound
}

func (r *memoryRepository) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.writes)
}

func (r *memoryRepository) remoteCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scanCalls + r.putCalls + r.delCalls
}

var errRemote = errors.New("record store unavailable")

func record(id, name string, pair model.SnapshotPair) model.ArtistRecord {
	rec := model.NewArtistRecord(model.MonitoredArtist{ID: id, Name: name})
	rec.LastAlbum = pair.Album
	rec.LastSingle = pair.Single
	return *rec
}
