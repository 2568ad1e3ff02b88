// FilePath: api/resources/api.resource.readings_test.go
package resources

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bokashilab/sensorhub/internal/blobstore"
	"github.com/bokashilab/sensorhub/internal/blobstore/memory"
	"github.com/bokashilab/sensorhub/internal/database"
	"github.com/bokashilab/sensorhub/internal/hubservice"
	"github.com/bokashilab/sensorhub/internal/models"
	"github.com/bokashilab/sensorhub/internal/repository"
)

type fakeReadingRepo struct {
	insertErr error
	listErr   error
	readings  []models.Reading
	nextID    int64
}

func (f *fakeReadingRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	return nil, nil
}

func (f *fakeReadingRepo) Insert(ctx context.Context, reading *models.Reading) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.nextID++
	reading.ID = f.nextID
	f.readings = append(f.readings, *reading)
	return f.nextID, nil
}

func (f *fakeReadingRepo) List(ctx context.Context, start, end *time.Time) ([]models.Reading, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.readings, nil
}

func (f *fakeReadingRepo) Latest(ctx context.Context) (*models.Reading, error) {
	if len(f.readings) == 0 {
		return nil, repository.ErrNotFound
	}
	r := f.readings[len(f.readings)-1]
	return &r, nil
}

type fakeImageRepo struct {
	insertErr error
	records   []models.ImageRecord
	nextID    int64
}

func (f *fakeImageRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	return nil, nil
}

func (f *fakeImageRepo) Insert(ctx context.Context, record *models.ImageRecord) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.nextID++
	record.ID = f.nextID
	record.Timestamp = time.Now()
	f.records = append(f.records, *record)
	return f.nextID, nil
}

func (f *fakeImageRepo) List(ctx context.Context) ([]models.ImageRecord, error) {
	return f.records, nil
}

func (f *fakeImageRepo) Latest(ctx context.Context) (*models.ImageRecord, error) {
	if len(f.records) == 0 {
		return nil, repository.ErrNotFound
	}
	r := f.records[len(f.records)-1]
	return &r, nil
}

type fixture struct {
	readings  *fakeReadingRepo
	images    *fakeImageRepo
	blobs     *memory.Store
	resources *Resources
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	readings := &fakeReadingRepo{}
	images := &fakeImageRepo{}
	blobs := memory.New()
	svc := hubservice.New(readings, images, blobs, nil, "")
	return &fixture{
		readings:  readings,
		images:    images,
		blobs:     blobs,
		resources: NewResources(svc, UploadConfig{MaxUploadSize: 10 << 20}),
	}
}

func newFixtureWithBlobs(t *testing.T, blobs blobstore.Store) (*fixture, *fakeReadingRepo) {
	t.Helper()
	readings := &fakeReadingRepo{}
	images := &fakeImageRepo{}
	svc := hubservice.New(readings, images, blobs, nil, "")
	return &fixture{
		readings:  readings,
		images:    images,
		resources: NewResources(svc, UploadConfig{MaxUploadSize: 10 << 20}),
	}, readings
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func multipartBody(t *testing.T, withImage bool, sensorData string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if withImage {
		part, err := w.CreateFormFile("image", "shot.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("imgbytes"))
		require.NoError(t, err)
	}
	if sensorData != "" {
		require.NoError(t, w.WriteField("sensorData", sensorData))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestCreateReadingJSON(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/readings", strings.NewReader(`{"temperature": 21.5}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.resources.Readings.CreateReading(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["insertedId"])
	assert.Nil(t, body["imageUrl"])
	require.Len(t, f.readings.readings, 1)
}

func TestCreateReadingEmptyJSON(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/readings", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.resources.Readings.CreateReading(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "no sensor data")
	assert.Empty(t, f.readings.readings)
}

func TestCreateReadingMalformedJSON(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/readings", strings.NewReader(`{broken`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.resources.Readings.CreateReading(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReadingUnsupportedContentType(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/readings", strings.NewReader("temperature=21"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	f.resources.Readings.CreateReading(rec, req)

	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
}

func TestCreateReadingMultipart(t *testing.T) {
	f := newFixture(t)

	buf, contentType := multipartBody(t, true, `{"temperature": 21.5, "co2": 800}`)
	req := httptest.NewRequest(http.MethodPost, "/readings", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.resources.Readings.CreateReading(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	imageURL, ok := body["imageUrl"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(imageURL, "-shot.jpg"))

	// The blob exists under the recorded key.
	assert.Equal(t, 1, f.blobs.Len())
	require.Len(t, f.readings.readings, 1)
	require.NotNil(t, f.readings.readings[0].ImageURL)
}

func TestCreateReadingMultipartMissingImage(t *testing.T) {
	f := newFixture(t)

	buf, contentType := multipartBody(t, false, `{"temperature": 21.5}`)
	req := httptest.NewRequest(http.MethodPost, "/readings", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.resources.Readings.CreateReading(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "'image' field")
}

func TestCreateReadingMultipartMissingSensorData(t *testing.T) {
	f := newFixture(t)

	buf, contentType := multipartBody(t, true, "")
	req := httptest.NewRequest(http.MethodPost, "/readings", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.resources.Readings.CreateReading(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "'sensorData' field")
}

func TestCreateReadingMultipartInsertFailureCleansUp(t *testing.T) {
	blobs := memory.New()
	f, readings := newFixtureWithBlobs(t, blobs)
	readings.insertErr = stderrors.New("deadlock")

	buf, contentType := multipartBody(t, true, `{"temperature": 21.5}`)
	req := httptest.NewRequest(http.MethodPost, "/readings", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.resources.Readings.CreateReading(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	// The uploaded blob was compensated away.
	assert.Equal(t, 0, blobs.Len())
}

func TestListReadings(t *testing.T) {
	f := newFixture(t)
	temp := 21.5
	f.readings.readings = []models.Reading{
		{ID: 1, Timestamp: time.Now().Add(-time.Hour), Temperature: &temp},
		{ID: 2, Timestamp: time.Now()},
	}

	req := httptest.NewRequest(http.MethodGet, "/readings/all", nil)
	rec := httptest.NewRecorder()
	f.resources.Readings.ListReadings(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["data"], 2)
}

func TestListReadingsEmptyIsArray(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/readings/all", nil)
	rec := httptest.NewRecorder()
	f.resources.Readings.ListReadings(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestListReadingsInvalidBounds(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/readings/all?StartTime=notatime", nil)
	rec := httptest.NewRecorder()
	f.resources.Readings.ListReadings(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListReadingsStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.readings.listErr = stderrors.New("connection reset")

	req := httptest.NewRequest(http.MethodGet, "/readings/all", nil)
	rec := httptest.NewRecorder()
	f.resources.Readings.ListReadings(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["request_id"])
}

func TestLatestReadingArrayShape(t *testing.T) {
	f := newFixture(t)

	// Empty store: empty array, not an error.
	req := httptest.NewRequest(http.MethodGet, "/readings/latest", nil)
	rec := httptest.NewRecorder()
	f.resources.Readings.LatestReading(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)

	// One reading: one-element array.
	temp := 21.5
	f.readings.readings = []models.Reading{{ID: 1, Timestamp: time.Now(), Temperature: &temp}}
	rec = httptest.NewRecorder()
	f.resources.Readings.LatestReading(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data, ok := body["data"].([]any)
	require.True(t, ok)
	assert.Len(t, data, 1)
}

func TestRoot(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	f.resources.Root(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
}
