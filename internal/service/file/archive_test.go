package file

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"testing"

	"github.com/flowmart/flowmart/internal/errs"
)

// zipEntries 解包并返回条目名与内容
func zipEntries(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("invalid zip: %v", err)
	}
	entries := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open entry %s: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read entry %s: %v", f.Name, err)
		}
		entries[f.Name] = content
	}
	return entries
}

// ========== DownloadArchive 测试 ==========

func TestDownloadArchive_AllEntries(t *testing.T) {
	store := newFakeObjectStore()
	store.objects["workflows/u1/w1/1-a.json"] = []byte(`{"name":"a"}`)
	store.objects["workflows/u1/w1/2-b.json"] = []byte(`{"name":"b"}`)
	workflows := newFakeWorkflows(testWorkflow(true))
	svc := newTestService(workflows, newFakeFiles(), store)

	archive, err := svc.DownloadArchive(context.Background(), nil, "w1")
	if err != nil {
		t.Fatalf("DownloadArchive() error = %v", err)
	}

	entries := zipEntries(t, archive.Data)
	if len(entries) != 2 {
		t.Fatalf("archive has %d entries, want 2", len(entries))
	}

	// 条目名去掉了目录前缀
	var names []string
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	if names[0] != "1-a.json" || names[1] != "2-b.json" {
		t.Errorf("entry names = %v, want [1-a.json 2-b.json]", names)
	}
	if string(entries["1-a.json"]) != `{"name":"a"}` {
		t.Errorf("entry content mismatch: %q", entries["1-a.json"])
	}

	// 整包下载计数只加一次
	if workflows.downloads["w1"] != 1 {
		t.Errorf("downloads = %d, want 1 regardless of file count", workflows.downloads["w1"])
	}
}

func TestDownloadArchive_SkipsBrokenObjects(t *testing.T) {
	store := newFakeObjectStore()
	store.objects["workflows/u1/w1/1-a.json"] = []byte(`{}`)
	store.objects["workflows/u1/w1/2-b.json"] = []byte(`{}`)
	store.getErrKeys["workflows/u1/w1/2-b.json"] = true
	svc := newTestService(newFakeWorkflows(testWorkflow(true)), newFakeFiles(), store)

	archive, err := svc.DownloadArchive(context.Background(), nil, "w1")
	if err != nil {
		t.Fatalf("a single broken object must not fail the archive: %v", err)
	}

	entries := zipEntries(t, archive.Data)
	if len(entries) != 1 {
		t.Errorf("archive has %d entries, want 1 (broken object skipped)", len(entries))
	}
	if _, ok := entries["1-a.json"]; !ok {
		t.Errorf("healthy object missing from archive")
	}
}

func TestDownloadArchive_AllFetchesFail(t *testing.T) {
	store := newFakeObjectStore()
	store.objects["workflows/u1/w1/1-a.json"] = []byte(`{}`)
	store.objects["workflows/u1/w1/2-b.json"] = []byte(`{}`)
	store.getErrKeys["workflows/u1/w1/1-a.json"] = true
	store.getErrKeys["workflows/u1/w1/2-b.json"] = true
	workflows := newFakeWorkflows(testWorkflow(true))
	svc := newTestService(workflows, newFakeFiles(), store)

	_, err := svc.DownloadArchive(context.Background(), nil, "w1")
	if !errors.Is(err, errs.ErrArchiveAssembly) {
		t.Errorf("error = %v, want ErrArchiveAssembly (never an empty archive)", err)
	}
	if workflows.downloads["w1"] != 0 {
		t.Errorf("downloads = %d, want 0 after failed assembly", workflows.downloads["w1"])
	}
}

func TestDownloadArchive_NoFiles(t *testing.T) {
	svc := newTestService(newFakeWorkflows(testWorkflow(true)), newFakeFiles(), newFakeObjectStore())

	_, err := svc.DownloadArchive(context.Background(), nil, "w1")
	if !errors.Is(err, errs.ErrNoFilesFound) {
		t.Errorf("error = %v, want ErrNoFilesFound", err)
	}
}

func TestDownloadArchive_ListFailure(t *testing.T) {
	store := newFakeObjectStore()
	store.listErr = errors.New("timeout")
	svc := newTestService(newFakeWorkflows(testWorkflow(true)), newFakeFiles(), store)

	_, err := svc.DownloadArchive(context.Background(), nil, "w1")
	if !errors.Is(err, errs.ErrStorageRead) {
		t.Errorf("error = %v, want ErrStorageRead", err)
	}
}

func TestDownloadArchive_AccessControl(t *testing.T) {
	newStore := func() *fakeObjectStore {
		store := newFakeObjectStore()
		store.objects["workflows/u1/w1/1-a.json"] = []byte(`{}`)
		return store
	}

	t.Run("anonymous on unpublished denied without side effects", func(t *testing.T) {
		workflows := newFakeWorkflows(testWorkflow(false))
		svc := newTestService(workflows, newFakeFiles(), newStore())

		_, err := svc.DownloadArchive(context.Background(), nil, "w1")
		if !errors.Is(err, errs.ErrAccessDenied) {
			t.Errorf("error = %v, want ErrAccessDenied", err)
		}
		if workflows.downloads["w1"] != 0 {
			t.Errorf("denied request must not increment the download counter")
		}
	})

	t.Run("stranger on unpublished denied", func(t *testing.T) {
		svc := newTestService(newFakeWorkflows(testWorkflow(false)), newFakeFiles(), newStore())
		_, err := svc.DownloadArchive(context.Background(), stranger(), "w1")
		if !errors.Is(err, errs.ErrAccessDenied) {
			t.Errorf("error = %v, want ErrAccessDenied", err)
		}
	})

	t.Run("owner on unpublished allowed", func(t *testing.T) {
		svc := newTestService(newFakeWorkflows(testWorkflow(false)), newFakeFiles(), newStore())
		if _, err := svc.DownloadArchive(context.Background(), owner(), "w1"); err != nil {
			t.Errorf("owner download failed: %v", err)
		}
	})

	t.Run("admin on unpublished allowed", func(t *testing.T) {
		svc := newTestService(newFakeWorkflows(testWorkflow(false)), newFakeFiles(), newStore())
		if _, err := svc.DownloadArchive(context.Background(), admin(), "w1"); err != nil {
			t.Errorf("admin download failed: %v", err)
		}
	})
}

func TestDownloadArchive_FileNameFromTitle(t *testing.T) {
	store := newFakeObjectStore()
	store.objects["workflows/u1/w1/1-a.json"] = []byte(`{}`)
	svc := newTestService(newFakeWorkflows(testWorkflow(true)), newFakeFiles(), store)

	archive, err := svc.DownloadArchive(context.Background(), nil, "w1")
	if err != nil {
		t.Fatalf("DownloadArchive() error = %v", err)
	}
	// 标题 "My ETL Flow!" -> 非字母数字全部替换
	if archive.FileName != "My_ETL_Flow_.zip" {
		t.Errorf("FileName = %q, want %q", archive.FileName, "My_ETL_Flow_.zip")
	}
}

func TestDownloadArchive_CanceledContext(t *testing.T) {
	store := newFakeObjectStore()
	store.objects["workflows/u1/w1/1-a.json"] = []byte(`{}`)
	svc := newTestService(newFakeWorkflows(testWorkflow(true)), newFakeFiles(), store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.DownloadArchive(ctx, nil, "w1")
	if !errors.Is(err, errs.ErrArchiveAssembly) {
		t.Errorf("error = %v, want ErrArchiveAssembly on canceled context", err)
	}
}
