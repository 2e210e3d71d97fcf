package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Henok-Aragaw/echo/internal/insight"
	"github.com/Henok-Aragaw/echo/internal/model"
	"github.com/Henok-Aragaw/echo/internal/store/storetest"
)

// fakeUploader records upload calls and serves a canned URL or failure.
type fakeUploader struct {
	url   string
	err   error
	calls int
}

func (f *fakeUploader) Upload(context.Context, string, string, []byte) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func newFragmentFixture(t *testing.T) (*FragmentService, *storetest.MemStore, *fakeUploader) {
	t.Helper()
	st := storetest.New()
	up := &fakeUploader{url: "https://cdn.example/echo/img.jpg"}
	insights := insight.NewGenerator(&fixedGen{text: "A moment, noticed."}, zerolog.Nop())
	insights.AttemptTimeout = 0
	insights.RetrySleep = 0
	insights.TierSleep = 0
	return NewFragmentService(st, insights, up, zerolog.Nop()), st, up
}

func captureUser() model.User {
	name := "Alice"
	return model.User{UserID: "u1", Email: "alice@example.com", DisplayName: &name}
}

func TestCreateTextFragmentWithInsight(t *testing.T) {
	svc, _, up := newFragmentFixture(t)

	frag, err := svc.Create(context.Background(), CreateFragmentRequest{
		User:    captureUser(),
		Type:    "text",
		Content: "  finished the migration  ",
	})
	require.NoError(t, err)
	assert.Equal(t, model.FragmentText, frag.Type)
	assert.Equal(t, "finished the migration", frag.Content)
	assert.Nil(t, frag.MediaURL)
	require.NotNil(t, frag.Insight)
	assert.Equal(t, "A moment, noticed.", frag.Insight.Content)
	assert.Zero(t, up.calls)
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc, _, _ := newFragmentFixture(t)

	_, err := svc.Create(context.Background(), CreateFragmentRequest{
		User:    captureUser(),
		Type:    "video",
		Content: "x",
	})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCreateRejectsBlankContent(t *testing.T) {
	svc, _, _ := newFragmentFixture(t)

	_, err := svc.Create(context.Background(), CreateFragmentRequest{
		User:    captureUser(),
		Type:    "TEXT",
		Content: "   ",
	})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCreateImageForcesTypeAndUploadsFirst(t *testing.T) {
	svc, _, up := newFragmentFixture(t)

	frag, err := svc.Create(context.Background(), CreateFragmentRequest{
		User:    captureUser(),
		Type:    "text", // declared type loses to the attached image
		Content: "sunset from the bridge",
		Image:   &ImageUpload{Filename: "sunset.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.FragmentImage, frag.Type)
	require.NotNil(t, frag.MediaURL)
	assert.Equal(t, "https://cdn.example/echo/img.jpg", *frag.MediaURL)
	assert.Equal(t, 1, up.calls)
}

func TestCreateUploadFailureWritesNoRow(t *testing.T) {
	svc, st, up := newFragmentFixture(t)
	up.err = errors.New("cdn unreachable")

	_, err := svc.Create(context.Background(), CreateFragmentRequest{
		User:    captureUser(),
		Type:    "image",
		Content: "sunset",
		Image:   &ImageUpload{Filename: "s.jpg", ContentType: "image/jpeg", Data: []byte{1}},
	})
	require.Error(t, err)

	frags, lerr := st.Fragments().List(context.Background(), model.ListFragmentsRequest{UserID: "u1", Take: 10})
	require.NoError(t, lerr)
	assert.Empty(t, frags)
}

func TestCreateSurvivesInsightPersistFailure(t *testing.T) {
	svc, st, _ := newFragmentFixture(t)
	st.InsightCreateErr = errors.New("constraint violated")

	frag, err := svc.Create(context.Background(), CreateFragmentRequest{
		User:    captureUser(),
		Type:    "TEXT",
		Content: "still captured",
	})
	require.NoError(t, err, "insight trouble must never fail the capture")
	assert.Equal(t, "still captured", frag.Content)
	assert.Nil(t, frag.Insight)
}

func TestCreateMirrorsUserRow(t *testing.T) {
	svc, st, _ := newFragmentFixture(t)

	_, err := svc.Create(context.Background(), CreateFragmentRequest{
		User:    captureUser(),
		Type:    "TEXT",
		Content: "hello",
	})
	require.NoError(t, err)

	u, err := st.Users().Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
}

func TestTimelineDefaultsAndDayFilter(t *testing.T) {
	svc, st, _ := newFragmentFixture(t)
	user := captureUser()
	for i := 0; i < 12; i++ {
		_, err := svc.Create(context.Background(), CreateFragmentRequest{
			User:    user,
			Type:    "TEXT",
			Content: "moment",
		})
		require.NoError(t, err)
	}

	frags, err := svc.Timeline(context.Background(), model.ListFragmentsRequest{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, frags, 10, "take defaults to 10")

	// A day filter far in the past matches nothing.
	old := model.DayStart(st.Clock().AddDate(0, 0, -30), time.UTC)
	frags, err = svc.Timeline(context.Background(), model.ListFragmentsRequest{UserID: "u1", Day: &old})
	require.NoError(t, err)
	assert.Empty(t, frags)
}
