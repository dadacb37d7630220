package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/student-affairs/servicedesk-api/internal/models"
)

type blobStoreStub struct {
	keys []string
}

func (s *blobStoreStub) Save(ctx context.Context, key string, reader io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	s.keys = append(s.keys, key)
	return "media/" + key, nil
}

type attachmentRepoStub struct {
	nextID uint
	items  []models.Attachment
}

func (r *attachmentRepoStub) Create(ctx context.Context, attachment *models.Attachment) error {
	r.nextID++
	attachment.ID = r.nextID
	r.items = append(r.items, *attachment)
	return nil
}

func (r *attachmentRepoStub) ListByRequest(ctx context.Context, requestID uint) ([]models.Attachment, error) {
	var out []models.Attachment
	for _, item := range r.items {
		if item.RequestID == requestID {
			out = append(out, item)
		}
	}
	return out, nil
}

func newAttachmentFixture(maxMB int) (*requestRepoStub, *attachmentRepoStub, *blobStoreStub, AttachmentService) {
	requests := newRequestRepoStub()
	attachments := &attachmentRepoStub{}
	store := &blobStoreStub{}
	svc := NewAttachmentService(attachments, requests, store, maxMB, testLogger())
	return requests, attachments, store, svc
}

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {"form-data; name=\"file\"; filename=\"" + filename + "\""},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content) + 1024))
	require.NoError(t, err)
	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func TestAttachmentUploadRejectsOversizedFile(t *testing.T) {
	requests, _, _, svc := newAttachmentFixture(1)
	requests.requests[1] = models.Request{ID: 1, StudentID: 42}

	file := buildFileHeader(t, "big.pdf", bytes.Repeat([]byte("a"), 2*1024*1024))
	_, err := svc.Upload(context.Background(), Principal{ID: 42, Role: models.RoleStudent}, 1, file)
	require.ErrorIs(t, err, ErrAttachmentTooLarge)
}

func TestAttachmentUploadSniffsContentType(t *testing.T) {
	requests, _, _, svc := newAttachmentFixture(5)
	requests.requests[1] = models.Request{ID: 1, StudentID: 42}

	// ZIP magic bytes: not on the allow list even with a .pdf name.
	zip := []byte{0x50, 0x4B, 0x03, 0x04, 0x00, 0x00}
	file := buildFileHeader(t, "report.pdf", zip)
	_, err := svc.Upload(context.Background(), Principal{ID: 42, Role: models.RoleStudent}, 1, file)
	require.ErrorIs(t, err, ErrAttachmentTypeNotAllowed)
}

func TestAttachmentUploadScopedToOwner(t *testing.T) {
	requests, _, _, svc := newAttachmentFixture(5)
	requests.requests[1] = models.Request{ID: 1, StudentID: 99}

	file := buildFileHeader(t, "note.txt", []byte("plain text note"))
	_, err := svc.Upload(context.Background(), Principal{ID: 42, Role: models.RoleStudent}, 1, file)
	require.ErrorIs(t, err, ErrRequestNotFound)
}

func TestAttachmentUploadSuccess(t *testing.T) {
	requests, repo, store, svc := newAttachmentFixture(5)
	requests.requests[1] = models.Request{ID: 1, StudentID: 42}

	pngHeader := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	file := buildFileHeader(t, "photo.png", pngHeader)

	attachment, err := svc.Upload(context.Background(), Principal{ID: 42, Role: models.RoleStudent}, 1, file)
	require.NoError(t, err)
	require.Equal(t, "image/png", attachment.ContentType)
	require.Contains(t, attachment.FileURL, "request_1/")
	require.Len(t, store.keys, 1)
	require.Len(t, repo.items, 1)
	require.Equal(t, uint(1), repo.items[0].RequestID)
}

func TestAttachmentListScopedToOwner(t *testing.T) {
	requests, repo, _, svc := newAttachmentFixture(5)
	requests.requests[1] = models.Request{ID: 1, StudentID: 42}
	repo.items = []models.Attachment{{ID: 1, RequestID: 1, FileName: "note.txt"}}

	listed, err := svc.ListByRequest(context.Background(), Principal{ID: 42, Role: models.RoleStudent}, 1)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	_, err = svc.ListByRequest(context.Background(), Principal{ID: 7, Role: models.RoleStudent}, 1)
	require.ErrorIs(t, err, ErrRequestNotFound)

	staff, err := svc.ListByRequest(context.Background(), Principal{ID: 7, Role: models.RoleStaffFinance}, 1)
	require.NoError(t, err)
	require.Len(t, staff, 1)
}
