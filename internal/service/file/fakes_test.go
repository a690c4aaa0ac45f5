package file

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/flowmart/flowmart/internal/config"
	"github.com/flowmart/flowmart/internal/model"
)

// ========== 测试替身 ==========

// fakeObjectStore 内存对象存储
type fakeObjectStore struct {
	objects map[string][]byte

	putErr  error
	listErr error
	signErr error
	delErr  error
	// 指定键读取失败，用于模拟损坏或暂时不可用的对象
	getErrKeys map[string]bool

	deleted []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		objects:    make(map[string][]byte),
		getErrKeys: make(map[string]bool),
	}
}

func (f *fakeObjectStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	f.objects[key] = data
	return "https://test-bucket.example.com/" + key, nil
}

func (f *fakeObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if f.getErrKeys[key] {
		return nil, fmt.Errorf("object %s unavailable", key)
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeObjectStore) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectStore) List(ctx context.Context, prefix string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var keys []string
	for key := range f.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeObjectStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	if _, ok := f.objects[key]; !ok {
		return "", fmt.Errorf("object %s not found", key)
	}
	return "https://test-bucket.example.com/" + key + "?signed=1", nil
}

func (f *fakeObjectStore) Bucket() string {
	return "test-bucket"
}

// fakeWorkflows 内存工作流仓库
type fakeWorkflows struct {
	workflows map[string]*model.Workflow
	downloads map[string]int
}

func newFakeWorkflows(workflows ...*model.Workflow) *fakeWorkflows {
	f := &fakeWorkflows{
		workflows: make(map[string]*model.Workflow),
		downloads: make(map[string]int),
	}
	for _, w := range workflows {
		f.workflows[w.ID] = w
	}
	return f
}

func (f *fakeWorkflows) GetByID(id string) (*model.Workflow, error) {
	w, ok := f.workflows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return w, nil
}

func (f *fakeWorkflows) SetFolderPath(id, folderPath string) error {
	w, ok := f.workflows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	w.FolderPath = folderPath
	return nil
}

func (f *fakeWorkflows) IncrementDownloads(id string) error {
	f.downloads[id]++
	return nil
}

// fakeFiles 内存附件仓库
type fakeFiles struct {
	files     map[string]*model.WorkflowFile
	createErr error
}

func newFakeFiles(files ...*model.WorkflowFile) *fakeFiles {
	f := &fakeFiles{files: make(map[string]*model.WorkflowFile)}
	for _, file := range files {
		f.files[file.ID] = file
	}
	return f
}

func (f *fakeFiles) Create(file *model.WorkflowFile) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.files[file.ID] = file
	return nil
}

func (f *fakeFiles) GetByID(id string) (*model.WorkflowFile, error) {
	file, ok := f.files[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return file, nil
}

func (f *fakeFiles) ListByWorkflowID(workflowID string) ([]*model.WorkflowFile, error) {
	var result []*model.WorkflowFile
	for _, file := range f.files {
		if file.WorkflowID == workflowID {
			result = append(result, file)
		}
	}
	return result, nil
}

func (f *fakeFiles) Delete(id string) error {
	delete(f.files, id)
	return nil
}

// fakeUsers 内存用户仓库
type fakeUsers struct {
	avatars map[string]string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{avatars: make(map[string]string)}
}

func (f *fakeUsers) UpdateAvatar(id, avatarURL string) error {
	f.avatars[id] = avatarURL
	return nil
}

// ========== 组装工具 ==========

var testLimits = &config.UploadConfig{
	MaxFileSize:   50 * 1024 * 1024,
	MaxAvatarSize: 5 * 1024 * 1024,
}

func newTestService(workflows *fakeWorkflows, files *fakeFiles, store *fakeObjectStore) *Service {
	svc := NewService(workflows, files, newFakeUsers(), store, nil, testLimits)
	// 递增的假时钟，保证后缀单调且测试可重现
	var tick int64
	svc.now = func() time.Time {
		tick++
		return time.Unix(0, tick)
	}
	return svc
}

func owner() *model.User {
	return &model.User{ID: "u1", Role: model.RoleUser, IsActive: true}
}

func admin() *model.User {
	return &model.User{ID: "admin1", Role: model.RoleAdmin, IsActive: true}
}

func stranger() *model.User {
	return &model.User{ID: "u2", Role: model.RoleUser, IsActive: true}
}

func fileRow(id, workflowID, key string) *model.WorkflowFile {
	return &model.WorkflowFile{
		ID:         id,
		WorkflowID: workflowID,
		FileName:   "a.json",
		FileURL:    "https://test-bucket.example.com/" + key,
		FileSize:   2,
		StorageKey: key,
	}
}

func testWorkflow(published bool) *model.Workflow {
	return &model.Workflow{
		ID:          "w1",
		AuthorID:    "u1",
		Title:       "My ETL Flow!",
		IsPublished: published,
	}
}
