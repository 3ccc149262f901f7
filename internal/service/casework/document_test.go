package casework

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"casedocs/internal/config"
	"casedocs/internal/domain"
	models "casedocs/internal/domain/models/casework"
	"casedocs/internal/domain/repositories"
	caseRepo "casedocs/internal/domain/repositories/casework"
	caseSvc "casedocs/internal/domain/services/casework"
)

// memDocRepo is an in-memory DocumentRepository mirroring the postgres
// implementation's not-found and duplicate-name behavior.
type memDocRepo struct {
	mu       sync.Mutex
	docs     map[string]*models.Document
	versions map[string][]models.DocumentVersion
	failNext error
}

func newMemDocRepo() *memDocRepo {
	return &memDocRepo{
		docs:     make(map[string]*models.Document),
		versions: make(map[string][]models.DocumentVersion),
	}
}

func (r *memDocRepo) CreateDocument(ctx context.Context, doc *models.Document, v *models.DocumentVersion) (*models.DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return nil, err
	}

	for _, existing := range r.docs {
		if !existing.IsDeleted && existing.FolderID == doc.FolderID && existing.Name == doc.Name {
			return nil, &domain.DuplicateNameError{FileName: doc.Name, FolderID: doc.FolderID}
		}
	}

	copied := *doc
	r.docs[doc.GUID] = &copied
	r.versions[doc.GUID] = []models.DocumentVersion{*v}
	return v, nil
}

func (r *memDocRepo) NextVersion(ctx context.Context, guid string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[guid]; !ok {
		return 0, fmt.Errorf("document %s: %w", guid, domain.ErrNotFound)
	}
	max := 0
	for _, v := range r.versions[guid] {
		if v.Version > max {
			max = v.Version
		}
	}
	return max + 1, nil
}

func (r *memDocRepo) CreateVersion(ctx context.Context, v *models.DocumentVersion) (*models.DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.versions[v.DocumentGUID] {
		if existing.Version == v.Version {
			return nil, fmt.Errorf("version %d of document %s already exists: %w",
				v.Version, v.DocumentGUID, domain.ErrPersistence)
		}
	}
	r.versions[v.DocumentGUID] = append(r.versions[v.DocumentGUID], *v)
	return v, nil
}

func (r *memDocRepo) SoftDeleteVersion(ctx context.Context, guid string, version int) (*models.DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	versions := r.versions[guid]
	for i := range versions {
		if versions[i].Version == version && !versions[i].IsDeleted {
			versions[i].IsDeleted = true
			deleted := versions[i]
			return &deleted, nil
		}
	}
	return nil, nil
}

func (r *memDocRepo) SoftDeleteDocument(ctx context.Context, guid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[guid]
	if !ok {
		return fmt.Errorf("document %s: %w", guid, domain.ErrNotFound)
	}
	doc.IsDeleted = true
	return nil
}

func (r *memDocRepo) CountLiveVersions(ctx context.Context, guid string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, v := range r.versions[guid] {
		if !v.IsDeleted {
			count++
		}
	}
	return count, nil
}

func (r *memDocRepo) GetByGUID(ctx context.Context, guid string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(guid, false)
}

func (r *memDocRepo) GetWithVersions(ctx context.Context, guid string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(guid, true)
}

func (r *memDocRepo) getLocked(guid string, withVersions bool) (*models.Document, error) {
	doc, ok := r.docs[guid]
	if !ok || doc.IsDeleted {
		return nil, fmt.Errorf("document %s: %w", guid, domain.ErrNotFound)
	}

	copied := *doc
	if withVersions {
		copied.Versions = append([]models.DocumentVersion(nil), r.versions[guid]...)
	} else {
		var latest *models.DocumentVersion
		for i := range r.versions[guid] {
			v := r.versions[guid][i]
			if v.IsDeleted {
				continue
			}
			if latest == nil || v.Version > latest.Version {
				latest = &v
			}
		}
		if latest != nil {
			copied.Versions = []models.DocumentVersion{*latest}
		}
	}
	return &copied, nil
}

func (r *memDocRepo) ListByFolder(ctx context.Context, folderID int64) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var docs []models.Document
	for guid, doc := range r.docs {
		if doc.FolderID == folderID && !doc.IsDeleted {
			copied, err := r.getLocked(guid, false)
			if err != nil {
				return nil, err
			}
			docs = append(docs, *copied)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].GUID < docs[j].GUID })
	return docs, nil
}

func (r *memDocRepo) UpdateDocuments(ctx context.Context, batch []caseRepo.DocumentUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range batch {
		versions := r.versions[item.GUID]
		updated := false
		for i := len(versions) - 1; i >= 0; i-- {
			if versions[i].IsDeleted {
				continue
			}
			if item.ReceivedAt != nil {
				versions[i].DateReceived = *item.ReceivedAt
			}
			if item.RedactionStatusID != nil {
				versions[i].RedactionStatusID = *item.RedactionStatusID
			}
			updated = true
			break
		}
		if !updated {
			return fmt.Errorf("document %s: %w", item.GUID, domain.ErrNotFound)
		}
	}
	return nil
}

func (r *memDocRepo) CreateAVStatuses(ctx context.Context, batch []caseRepo.AVStatusUpdate) error {
	for _, item := range batch {
		if err := r.UpdateAVStatus(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (r *memDocRepo) UpdateAVStatus(ctx context.Context, item caseRepo.AVStatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	versions := r.versions[item.GUID]
	for i := range versions {
		if versions[i].Version == item.Version {
			versions[i].VirusCheckStatus = item.Status
			return nil
		}
	}
	return fmt.Errorf("version %d of document %s: %w", item.Version, item.GUID, domain.ErrNotFound)
}

// memFolderRepo is an in-memory FolderRepository.
type memFolderRepo struct {
	mu      sync.Mutex
	nextID  int64
	folders []models.Folder
}

func (r *memFolderRepo) CreateMany(ctx context.Context, folders []models.Folder) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := make([]models.Folder, 0, len(folders))
	for _, f := range folders {
		r.nextID++
		f.ID = r.nextID
		r.folders = append(r.folders, f)
		created = append(created, f)
	}
	return created, nil
}

func (r *memFolderRepo) GetByID(ctx context.Context, id, caseID int64) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.folders {
		if f.ID == id && f.CaseID == caseID {
			copied := f
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
}

func (r *memFolderRepo) GetByCaseAndPath(ctx context.Context, caseID int64, path string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.folders {
		if f.CaseID == caseID && f.Path == path {
			copied := f
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("folder '%s': %w", path, domain.ErrNotFound)
}

func (r *memFolderRepo) ListByCase(ctx context.Context, caseID int64) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Folder
	for _, f := range r.folders {
		if f.CaseID == caseID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memFolderRepo) ListByCaseAndPaths(ctx context.Context, caseID int64, paths []string) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := make(map[string]bool, len(paths))
	for _, p := range paths {
		wanted[p] = true
	}
	var out []models.Folder
	for _, f := range r.folders {
		if f.CaseID == caseID && wanted[f.Path] {
			out = append(out, f)
		}
	}
	return out, nil
}

// memAuditRepo records audit writes in order.
type memAuditRepo struct {
	mu      sync.Mutex
	nextID  int64
	records []models.AuditRecord
	entries []models.VersionAudit
}

func (r *memAuditRepo) CreateAuditTrail(ctx context.Context, rec *models.AuditRecord) (*models.AuditRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	rec.ID = r.nextID
	rec.LoggedAt = time.Now().UTC()
	r.records = append(r.records, *rec)
	return rec, nil
}

func (r *memAuditRepo) CreateVersionAudit(ctx context.Context, va *models.VersionAudit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *va)
	return nil
}

func (r *memAuditRepo) ListVersionAudit(ctx context.Context, guid string) ([]models.VersionAudit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.VersionAudit
	for _, e := range r.entries {
		if e.DocumentGUID == guid {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memAuditRepo) entriesFor(action models.AuditAction) []models.VersionAudit {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.VersionAudit
	for _, e := range r.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// recordingBroadcaster captures emitted events.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []broadcastEvent
}

type broadcastEvent struct {
	guid      string
	version   int
	eventType caseSvc.BroadcastEventType
}

func (b *recordingBroadcaster) BroadcastDocument(ctx context.Context, guid string, version int, eventType caseSvc.BroadcastEventType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastEvent{guid: guid, version: version, eventType: eventType})
}

func (b *recordingBroadcaster) ofType(t caseSvc.BroadcastEventType) []broadcastEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []broadcastEvent
	for _, e := range b.events {
		if e.eventType == t {
			out = append(out, e)
		}
	}
	return out
}

// serialTxManager serializes ExecTx calls, mimicking the row-level
// serialization the postgres transaction manager provides.
type serialTxManager struct {
	mu sync.Mutex
}

func (m *serialTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type testEnv struct {
	svc       caseSvc.DocumentService
	docs      *memDocRepo
	folders   *memFolderRepo
	audit     *memAuditRepo
	events    *recordingBroadcaster
	redaction *stubRedactionRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	docs := newMemDocRepo()
	folders := &memFolderRepo{
		nextID: 9,
		folders: []models.Folder{
			{ID: 7, CaseID: 42, Path: "appellantCase/plansDrawings"},
			{ID: 9, CaseID: 42, Path: "representations/lpaStatement"},
		},
	}
	audit := &memAuditRepo{}
	events := &recordingBroadcaster{}
	redactionRepo := &stubRedactionRepo{statuses: testCatalogue()}

	registry, err := NewFolderRegistry()
	require.NoError(t, err)

	resolver := NewRedactionResolver(redactionRepo, time.Minute, slog.New(slog.DiscardHandler))

	svc := NewDocumentService(
		docs,
		folders,
		audit,
		&serialTxManager{},
		registry,
		resolver,
		events,
		slog.New(slog.DiscardHandler),
		"https://blobs.example.com",
		"uploads",
		3,
	)

	return &testEnv{svc: svc, docs: docs, folders: folders, audit: audit, events: events, redaction: redactionRepo}
}

func uploadItem(folderID int64, name string) caseSvc.UploadItem {
	return caseSvc.UploadItem{
		FolderID:          folderID,
		DocumentName:      name,
		OriginalFilename:  name,
		Mime:              "application/pdf",
		Size:              1024,
		DocumentType:      "appealStatement",
		Stage:             models.StageAppellantCase,
		DateReceived:      time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		RedactionStatusID: 2,
		UserID:            "officer-1",
	}
}

func TestAddDocuments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.AddDocuments(ctx, &caseSvc.AddDocumentsRequest{
		CaseID:        42,
		CaseReference: "APP/Q9999/D/21/123",
		AppealStatus:  models.StatusReadyToStart,
		Items: []caseSvc.UploadItem{
			uploadItem(7, "statement.pdf"),
			uploadItem(7, "plans.pdf"),
		},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	// Input order preserved
	require.Equal(t, "statement.pdf", created[0].Name)
	require.Equal(t, "plans.pdf", created[1].Name)

	require.NotEqual(t, created[0].GUID, created[1].GUID)
	for _, c := range created {
		require.Equal(t, 1, c.Version)
		require.False(t, c.IsLateEntry)
		require.Contains(t, c.BlobStoragePath, "/v1/")
		require.Contains(t, c.BlobStoragePath, "APP-Q9999-D-21-123")
		require.NotContains(t, c.BlobStoragePath, "APP/Q9999")
		require.Equal(t, "uploads", c.BlobStorageContainer)
		require.True(t, strings.HasPrefix(c.DocumentURI, "https://blobs.example.com/uploads/appeal/"))
	}

	// One Create audit entry per document
	creates := env.audit.entriesFor(models.AuditActionCreate)
	require.Len(t, creates, 2)

	// One Create broadcast per document
	require.Len(t, env.events.ofType(caseSvc.BroadcastCreate), 2)

	// Versions start not_scanned
	doc, err := env.docs.GetWithVersions(ctx, created[0].GUID)
	require.NoError(t, err)
	require.Equal(t, models.VirusCheckNotScanned, doc.Versions[0].VirusCheckStatus)
}

func TestAddDocumentsResolvesFolderFromStage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	folders, err := env.svc.CreateCaseFolders(ctx, 42)
	require.NoError(t, err)

	var statementFolder, dropbox int64
	for _, f := range folders {
		switch f.Path {
		case "appellantCase/appealStatement":
			statementFolder = f.ID
		case "dropbox":
			dropbox = f.ID
		}
	}
	require.NotZero(t, statementFolder)
	require.NotZero(t, dropbox)

	// No folder id: resolve by stage/documentType catalogue path
	created, err := env.svc.AddDocuments(ctx, &caseSvc.AddDocumentsRequest{
		CaseID:        42,
		CaseReference: "APP/1",
		AppealStatus:  models.StatusReadyToStart,
		Items:         []caseSvc.UploadItem{uploadItem(0, "statement.pdf")},
	})
	require.NoError(t, err)
	require.Equal(t, statementFolder, created[0].FolderID)

	// Unmapped stage/type pairs land in the catch-all folder
	odd := uploadItem(0, "odd.pdf")
	odd.Stage = "withdrawal"
	odd.DocumentType = "somethingElse"
	created, err = env.svc.AddDocuments(ctx, &caseSvc.AddDocumentsRequest{
		CaseID:        42,
		CaseReference: "APP/1",
		AppealStatus:  models.StatusReadyToStart,
		Items:         []caseSvc.UploadItem{odd},
	})
	require.NoError(t, err)
	require.Equal(t, dropbox, created[0].FolderID)
}

func TestAddDocumentsRejectsForeignFolder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	foreign, err := env.svc.CreateCaseFolders(ctx, 43)
	require.NoError(t, err)
	require.NotEmpty(t, foreign)

	// A folder id belonging to another case reads as not found; the
	// upload must not land in the other case's folder.
	_, err = env.svc.AddDocuments(ctx, &caseSvc.AddDocumentsRequest{
		CaseID:        42,
		CaseReference: "APP/1",
		AppealStatus:  models.StatusReadyToStart,
		Items:         []caseSvc.UploadItem{uploadItem(foreign[0].ID, "statement.pdf")},
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrNotFound))

	listed, err := env.svc.GetFolder(ctx, 43, foreign[0].ID)
	require.NoError(t, err)
	require.NotNil(t, listed)
	require.Empty(t, listed.Documents)
}

func TestAddDocumentsLateEntry(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.svc.AddDocuments(context.Background(), &caseSvc.AddDocumentsRequest{
		CaseID:        42,
		CaseReference: "APP/1",
		AppealStatus:  "lpa_questionnaire",
		Items:         []caseSvc.UploadItem{uploadItem(7, "late.pdf")},
	})
	require.NoError(t, err)
	require.True(t, created[0].IsLateEntry)
}

func TestAddDocumentsRepresentationNameDedupe(t *testing.T) {
	env := newTestEnv(t)

	item := uploadItem(9, "comment.pdf")
	item.Stage = models.StageRepresentations

	created, err := env.svc.AddDocuments(context.Background(), &caseSvc.AddDocumentsRequest{
		CaseID:        42,
		CaseReference: "APP/1",
		AppealStatus:  models.StatusReadyToStart,
		Items:         []caseSvc.UploadItem{item},
	})
	require.NoError(t, err)

	// Stored name carries a random token; display name does not
	require.NotEqual(t, "comment.pdf", created[0].Name)
	require.Equal(t, "comment.pdf", StripDedupePrefix(created[0].Name))
}

func TestAddDocumentsDuplicateName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := &caseSvc.AddDocumentsRequest{
		CaseID:        42,
		CaseReference: "APP/1",
		AppealStatus:  models.StatusReadyToStart,
		Items:         []caseSvc.UploadItem{uploadItem(7, "statement.pdf")},
	}
	_, err := env.svc.AddDocuments(ctx, req)
	require.NoError(t, err)

	_, err = env.svc.AddDocuments(ctx, req)
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrDuplicateName))

	var dup *domain.DuplicateNameError
	require.True(t, errors.As(err, &dup))
	require.Equal(t, "statement.pdf", dup.FileName)
}

func TestAddDocumentsFailsFast(t *testing.T) {
	env := newTestEnv(t)
	env.docs.failNext = errors.New("connection reset")

	_, err := env.svc.AddDocuments(context.Background(), &caseSvc.AddDocumentsRequest{
		CaseID:        42,
		CaseReference: "APP/1",
		AppealStatus:  models.StatusReadyToStart,
		Items: []caseSvc.UploadItem{
			uploadItem(7, "a.pdf"),
			uploadItem(7, "b.pdf"),
			uploadItem(7, "c.pdf"),
		},
	})
	require.Error(t, err)
}

func TestAddDocumentsValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.AddDocuments(ctx, &caseSvc.AddDocumentsRequest{
		CaseID:       42,
		AppealStatus: models.StatusReadyToStart,
		Items:        []caseSvc.UploadItem{uploadItem(7, "a.pdf")},
	})
	require.True(t, errors.Is(err, domain.ErrValidation), "missing case reference")

	_, err = env.svc.AddDocuments(ctx, &caseSvc.AddDocumentsRequest{
		CaseID:        42,
		CaseReference: "APP/1",
		AppealStatus:  models.StatusReadyToStart,
	})
	require.True(t, errors.Is(err, domain.ErrValidation), "missing items")

	_, err = env.svc.AddDocuments(ctx, &caseSvc.AddDocumentsRequest{
		CaseID:        42,
		CaseReference: strings.Repeat("A", config.MaxCaseReferenceLength+1),
		AppealStatus:  models.StatusReadyToStart,
		Items:         []caseSvc.UploadItem{uploadItem(7, "a.pdf")},
	})
	require.True(t, errors.Is(err, domain.ErrValidation), "oversized case reference")

	long := uploadItem(7, strings.Repeat("n", config.MaxDocumentNameLength+1))
	_, err = env.svc.AddDocuments(ctx, &caseSvc.AddDocumentsRequest{
		CaseID:        42,
		CaseReference: "APP/1",
		AppealStatus:  models.StatusReadyToStart,
		Items:         []caseSvc.UploadItem{long},
	})
	require.True(t, errors.Is(err, domain.ErrValidation), "oversized document name")

	bad := uploadItem(7, "a.pdf")
	bad.RedactionStatusID = 99
	_, err = env.svc.AddDocuments(ctx, &caseSvc.AddDocumentsRequest{
		CaseID:        42,
		CaseReference: "APP/1",
		AppealStatus:  models.StatusReadyToStart,
		Items:         []caseSvc.UploadItem{bad},
	})
	require.True(t, errors.Is(err, domain.ErrValidation), "unknown redaction id")
}

func addOneDocument(t *testing.T, env *testEnv, name string) caseSvc.CreatedVersion {
	t.Helper()

	created, err := env.svc.AddDocuments(context.Background(), &caseSvc.AddDocumentsRequest{
		CaseID:        42,
		CaseReference: "APP/Q9999/D/21/123",
		AppealStatus:  models.StatusReadyToStart,
		Items:         []caseSvc.UploadItem{uploadItem(7, name)},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	return created[0]
}

func TestAddVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := addOneDocument(t, env, "statement.pdf")

	item := uploadItem(7, "statement-v2.pdf")
	created, err := env.svc.AddVersion(ctx, &caseSvc.AddVersionRequest{
		DocumentGUID:  doc.GUID,
		CaseReference: "APP/Q9999/D/21/123",
		AppealStatus:  "lpa_questionnaire",
		Upload:        item,
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	require.Equal(t, 2, created.Version)
	require.Contains(t, created.BlobStoragePath, "/v2/")
	// Late entry is recomputed against the status at this receipt
	require.True(t, created.IsLateEntry)

	require.Len(t, env.events.ofType(caseSvc.BroadcastUpdate), 1)
	require.Len(t, env.audit.entriesFor(models.AuditActionUpdate), 1)

	// The first version's flag is untouched
	full, err := env.docs.GetWithVersions(ctx, doc.GUID)
	require.NoError(t, err)
	require.False(t, full.Versions[0].IsLateEntry)
}

func TestAddVersionNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.AddVersion(ctx, &caseSvc.AddVersionRequest{
		DocumentGUID:  "no-such-guid",
		CaseReference: "APP/1",
		Upload:        uploadItem(7, "a.pdf"),
	})
	require.True(t, errors.Is(err, domain.ErrNotFound))

	// A soft-deleted document behaves like a missing one
	doc := addOneDocument(t, env, "statement.pdf")
	deleted, err := env.svc.DeleteVersion(ctx, doc.GUID, 1)
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = env.svc.AddVersion(ctx, &caseSvc.AddVersionRequest{
		DocumentGUID:  doc.GUID,
		CaseReference: "APP/1",
		Upload:        uploadItem(7, "a.pdf"),
	})
	require.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAddVersionConcurrent(t *testing.T) {
	env := newTestEnv(t)
	doc := addOneDocument(t, env, "statement.pdf")

	const n = 5
	var wg sync.WaitGroup
	versions := make([]int, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := env.svc.AddVersion(context.Background(), &caseSvc.AddVersionRequest{
				DocumentGUID:  doc.GUID,
				CaseReference: "APP/1",
				AppealStatus:  models.StatusReadyToStart,
				Upload:        uploadItem(7, fmt.Sprintf("v-%d.pdf", i)),
			})
			errs[i] = err
			if created != nil {
				versions[i] = created.Version
			}
		}()
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
	}

	// N distinct, consecutive version numbers following version 1
	sort.Ints(versions)
	require.Equal(t, []int{2, 3, 4, 5, 6}, versions)
}

func TestDeleteVersionCascade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := addOneDocument(t, env, "statement.pdf")

	deleted, err := env.svc.DeleteVersion(ctx, doc.GUID, 1)
	require.NoError(t, err)
	require.True(t, deleted)

	// Sole version gone: document soft-deleted too
	_, err = env.docs.GetByGUID(ctx, doc.GUID)
	require.True(t, errors.Is(err, domain.ErrNotFound))

	require.Len(t, env.events.ofType(caseSvc.BroadcastDelete), 1)
	require.Len(t, env.audit.entriesFor(models.AuditActionDelete), 1)
}

func TestDeleteVersionNonSole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := addOneDocument(t, env, "statement.pdf")

	second, err := env.svc.AddVersion(ctx, &caseSvc.AddVersionRequest{
		DocumentGUID:  doc.GUID,
		CaseReference: "APP/1",
		AppealStatus:  models.StatusReadyToStart,
		Upload:        uploadItem(7, "statement-v2.pdf"),
	})
	require.NoError(t, err)

	deleted, err := env.svc.DeleteVersion(ctx, doc.GUID, second.Version)
	require.NoError(t, err)
	require.True(t, deleted)

	// Document stays live; version 1 is current again and the deleted
	// number is never reused
	full, err := env.docs.GetWithVersions(ctx, doc.GUID)
	require.NoError(t, err)
	require.False(t, full.IsDeleted)
	require.Equal(t, 1, full.LatestVersion().Version)

	next, err := env.svc.AddVersion(ctx, &caseSvc.AddVersionRequest{
		DocumentGUID:  doc.GUID,
		CaseReference: "APP/1",
		AppealStatus:  models.StatusReadyToStart,
		Upload:        uploadItem(7, "statement-v3.pdf"),
	})
	require.NoError(t, err)
	require.Equal(t, 3, next.Version)
}

func TestDeleteVersionMissing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	deleted, err := env.svc.DeleteVersion(ctx, "no-such-guid", 1)
	require.NoError(t, err)
	require.False(t, deleted)

	doc := addOneDocument(t, env, "statement.pdf")
	deleted, err = env.svc.DeleteVersion(ctx, doc.GUID, 9)
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestRecordScanResult(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := addOneDocument(t, env, "statement.pdf")

	// The scanner cannot report not_scanned, and unknown values are
	// rejected outright
	err := env.svc.RecordScanResult(ctx, doc.GUID, 1, models.VirusCheckNotScanned)
	require.True(t, errors.Is(err, domain.ErrValidation))
	err = env.svc.RecordScanResult(ctx, doc.GUID, 1, "clean")
	require.True(t, errors.Is(err, domain.ErrValidation))
	err = env.svc.RecordScanResult(ctx, doc.GUID, 1, "")
	require.True(t, errors.Is(err, domain.ErrValidation))

	err = env.svc.RecordScanResult(ctx, doc.GUID, 9, models.VirusCheckScanned)
	require.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, env.svc.RecordScanResult(ctx, doc.GUID, 1, models.VirusCheckScanned))

	full, err := env.docs.GetWithVersions(ctx, doc.GUID)
	require.NoError(t, err)
	require.True(t, full.Versions[0].Downloadable())
}

func TestRecordScanResultsBatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := addOneDocument(t, env, "statement.pdf")
	second := addOneDocument(t, env, "plans.pdf")

	err := env.svc.RecordScanResults(ctx, []caseSvc.ScanResult{
		{DocumentGUID: first.GUID, Version: 1, VirusCheckStatus: models.VirusCheckScanned},
		{DocumentGUID: second.GUID, Version: 1, VirusCheckStatus: models.VirusCheckAffected},
	})
	require.NoError(t, err)

	firstDoc, err := env.docs.GetWithVersions(ctx, first.GUID)
	require.NoError(t, err)
	require.True(t, firstDoc.Versions[0].Downloadable())

	secondDoc, err := env.docs.GetWithVersions(ctx, second.GUID)
	require.NoError(t, err)
	require.Equal(t, models.VirusCheckAffected, secondDoc.Versions[0].VirusCheckStatus)

	// One invalid entry rejects the whole batch
	err = env.svc.RecordScanResults(ctx, []caseSvc.ScanResult{
		{DocumentGUID: first.GUID, Version: 1, VirusCheckStatus: "clean"},
	})
	require.True(t, errors.Is(err, domain.ErrValidation))

	err = env.svc.RecordScanResults(ctx, nil)
	require.True(t, errors.Is(err, domain.ErrValidation))
}

func TestUpdateDocumentsValidatesRedaction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := addOneDocument(t, env, "statement.pdf")

	bad := int64(99)
	err := env.svc.UpdateDocuments(ctx, &caseSvc.UpdateDocumentsRequest{
		Items: []caseSvc.UpdateDocumentItem{{GUID: doc.GUID, RedactionStatusID: &bad}},
	})
	require.True(t, errors.Is(err, domain.ErrValidation))

	good := int64(1)
	require.NoError(t, env.svc.UpdateDocuments(ctx, &caseSvc.UpdateDocumentsRequest{
		Items: []caseSvc.UpdateDocumentItem{{GUID: doc.GUID, RedactionStatusID: &good}},
	}))

	full, err := env.docs.GetWithVersions(ctx, doc.GUID)
	require.NoError(t, err)
	require.Equal(t, int64(1), full.Versions[0].RedactionStatusID)
}

func TestGetFolderScopedToCase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	folders, err := env.svc.CreateCaseFolders(ctx, 42)
	require.NoError(t, err)
	require.NotEmpty(t, folders)

	found, err := env.svc.GetFolder(ctx, 42, folders[0].ID)
	require.NoError(t, err)
	require.NotNil(t, found)

	// Same folder id under a different case is indistinguishable from a
	// missing one
	missing, err := env.svc.GetFolder(ctx, 43, folders[0].ID)
	require.NoError(t, err)
	require.Nil(t, missing)

	missing, err = env.svc.GetFolder(ctx, 42, 99999)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestGetFoldersForCaseByStage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.CreateCaseFolders(ctx, 42)
	require.NoError(t, err)

	all, err := env.svc.GetFoldersForCase(ctx, 42, "")
	require.NoError(t, err)

	appellant, err := env.svc.GetFoldersForCase(ctx, 42, models.StageAppellantCase)
	require.NoError(t, err)
	require.NotEmpty(t, appellant)
	require.Less(t, len(appellant), len(all))
	for _, f := range appellant {
		require.Equal(t, models.StageAppellantCase, f.Stage())
	}

	// Unknown stages resolve to the catch-all dropbox folder
	fallback, err := env.svc.GetFoldersForCase(ctx, 42, "withdrawal")
	require.NoError(t, err)
	require.Len(t, fallback, 1)
	require.Equal(t, "dropbox", fallback[0].Path)
}
