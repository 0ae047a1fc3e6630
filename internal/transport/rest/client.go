package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lmsc-client/internal/app"
	"lmsc-client/internal/domain"
	"lmsc-client/internal/logger"
)

// TokenSource supplies the bearer credential for authenticated calls.
// Implemented by app.SessionStore.
type TokenSource interface {
	Token() (string, bool)
}

// TokenFunc adapts a closure to TokenSource, which keeps construction order
// flexible when the client and the session store reference each other.
type TokenFunc func() (string, bool)

func (f TokenFunc) Token() (string, bool) { return f() }

// Client consumes the LMSC HTTP JSON API. Every response is an envelope of
// the form {data, message?}; a reply without data is treated as a transport
// failure rather than propagated as missing fields.
type Client struct {
	baseURL string
	httpc   *http.Client
	tokens  TokenSource
	log     *logger.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpc = h }
}

func WithTokenSource(ts TokenSource) ClientOption {
	return func(c *Client) { c.tokens = ts }
}

func WithLogger(log *logger.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 15 * time.Second},
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "rest")
	return c
}

// envelope is the API's standard response wrapper.
type envelope[T any] struct {
	Data    *T     `json:"data"`
	Message string `json:"message"`
}

// --- wire shapes -----------------------------------------------------------

type lessonDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl"`
	TeacherID   string `json:"teacherId"`
	PublishedAt string `json:"publishedAt"`
}

func (d lessonDTO) model() domain.Lesson {
	return domain.Lesson{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		VideoURL:    d.VideoURL,
		TeacherID:   d.TeacherID,
		PublishedAt: parseWhen(d.PublishedAt),
	}
}

type questionDTO struct {
	ID            string `json:"id"`
	LessonID      string `json:"lessonId"`
	Text          string `json:"questionText"`
	OptionA       string `json:"optionA"`
	OptionB       string `json:"optionB"`
	OptionC       string `json:"optionC"`
	OptionD       string `json:"optionD"`
	CorrectOption string `json:"correctOption"`
}

type taskDTO struct {
	ID       string `json:"id"`
	LessonID string `json:"lessonId"`
	Text     string `json:"taskText"`
}

type attemptDTO struct {
	ID          string            `json:"id"`
	LessonID    string            `json:"lessonId"`
	StudentID   string            `json:"studentId"`
	SubmittedAt string            `json:"submittedAt"`
	Score       int               `json:"score"`
	Answers     map[string]string `json:"answers"`
}

func (d attemptDTO) model() domain.QuizAttempt {
	answers := make(map[string]domain.Option, len(d.Answers))
	for q, o := range d.Answers {
		answers[q] = domain.Option(strings.ToUpper(o))
	}
	return domain.QuizAttempt{
		ID:          d.ID,
		LessonID:    d.LessonID,
		StudentID:   d.StudentID,
		SubmittedAt: parseWhen(d.SubmittedAt),
		Score:       d.Score,
		Answers:     answers,
	}
}

type submissionDTO struct {
	ID           string `json:"id"`
	SubmissionID string `json:"submissionId"`
	TaskID       string `json:"taskId"`
	StudentID    string `json:"studentId"`
	StudentName  string `json:"studentName"`
	SubmittedAt  string `json:"submittedAt"`
	Content      string `json:"content"`
	Mark         *int   `json:"mark"`
}

func (d submissionDTO) model() domain.TaskSubmission {
	id := d.ID
	if id == "" {
		id = d.SubmissionID
	}
	return domain.TaskSubmission{
		ID:          id,
		TaskID:      d.TaskID,
		StudentID:   d.StudentID,
		StudentName: d.StudentName,
		SubmittedAt: parseWhen(d.SubmittedAt),
		Content:     d.Content,
		Mark:        d.Mark,
	}
}

type lessonDetailDTO struct {
	lessonDTO
	QuizQuestions []questionDTO  `json:"quizQuestions"`
	LessonTasks   []taskDTO      `json:"lessonTasks"`
	QuizAttempt   *attemptDTO    `json:"quizAttempt"`
	Submission    *submissionDTO `json:"taskSubmission"`
}

func (d lessonDetailDTO) model() domain.LessonDetail {
	detail := domain.LessonDetail{Lesson: d.lessonDTO.model()}
	for _, q := range d.QuizQuestions {
		detail.Questions = append(detail.Questions, domain.QuizQuestion{
			ID:            q.ID,
			LessonID:      q.LessonID,
			Text:          q.Text,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			CorrectOption: domain.Option(strings.ToUpper(q.CorrectOption)),
		})
	}
	for _, t := range d.LessonTasks {
		detail.Tasks = append(detail.Tasks, domain.LessonTask{ID: t.ID, LessonID: t.LessonID, Text: t.Text})
	}
	if d.QuizAttempt != nil {
		at := d.QuizAttempt.model()
		detail.Attempt = &at
	}
	if d.Submission != nil {
		sub := d.Submission.model()
		detail.Submission = &sub
	}
	return detail
}

// --- auth ------------------------------------------------------------------

// Authenticate implements app.Authenticator. The role travels uppercase on
// the wire; the session layer re-derives the canonical role from the token.
func (c *Client) Authenticate(ctx context.Context, email string, role domain.Role) (string, error) {
	body := map[string]string{"email": email, "role": strings.ToUpper(string(role))}
	data, err := doJSON[struct {
		Token string `json:"token"`
	}](ctx, c, http.MethodPost, "/auth/login", nil, body)
	if err != nil {
		return "", err
	}
	if data.Token == "" {
		return "", fmt.Errorf("%w: login reply without token", domain.ErrTransport)
	}
	return data.Token, nil
}

// --- catalog ---------------------------------------------------------------

// Search implements app.SearchFunc. A page past the end comes back as an
// empty data array with the true total, which is exactly what the pager
// needs.
func (c *Client) Search(ctx context.Context, q app.Query) (app.Page, error) {
	query := url.Values{}
	if q.Term != "" {
		query.Set("searchTerm", q.Term)
	}
	query.Set("page", strconv.Itoa(q.PageNum))
	query.Set("limit", strconv.Itoa(q.PageSize))

	req, err := c.newRequest(ctx, http.MethodGet, "/lessons", query, nil)
	if err != nil {
		return app.Page{}, err
	}

	var reply struct {
		Data []lessonDTO `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	if err := c.send(req, &reply); err != nil {
		return app.Page{}, err
	}
	if reply.Data == nil {
		return app.Page{}, fmt.Errorf("%w: search reply without data", domain.ErrTransport)
	}

	page := app.Page{Total: reply.Meta.Total, PageNum: q.PageNum, PageSize: q.PageSize}
	for _, dto := range reply.Data {
		page.Lessons = append(page.Lessons, dto.model())
	}
	return page, nil
}

// LoadLesson implements app.LessonLoader: the bare detail, no per-student
// fields. The scoring and caching paths use this one.
func (c *Client) LoadLesson(ctx context.Context, lessonID string) (domain.LessonDetail, error) {
	return c.LoadLessonFor(ctx, lessonID, "")
}

// LoadLessonFor implements app.StudentLessonLoader. With a studentId the
// server joins in that student's own attempt and task submission.
func (c *Client) LoadLessonFor(ctx context.Context, lessonID, studentID string) (domain.LessonDetail, error) {
	var query url.Values
	if studentID != "" {
		query = url.Values{"studentId": {studentID}}
	}
	data, err := doJSON[lessonDetailDTO](ctx, c, http.MethodGet, "/lessons/"+url.PathEscape(lessonID), query, nil)
	if err != nil {
		return domain.LessonDetail{}, err
	}
	return data.model(), nil
}

// LessonsByTeacher implements app.TeacherCatalog.
func (c *Client) LessonsByTeacher(ctx context.Context, teacherID string) ([]domain.Lesson, error) {
	data, err := doJSON[[]lessonDTO](ctx, c, http.MethodGet, "/lessons/teachers/"+url.PathEscape(teacherID)+"/lessons", nil, nil)
	if err != nil {
		return nil, err
	}
	lessons := make([]domain.Lesson, 0, len(data))
	for _, dto := range data {
		lessons = append(lessons, dto.model())
	}
	return lessons, nil
}

// --- assessment stores -----------------------------------------------------

// FindAttempt reads the student's attempt through the lesson detail view.
func (c *Client) FindAttempt(ctx context.Context, studentID, lessonID string) (domain.QuizAttempt, bool, error) {
	detail, err := c.LoadLessonFor(ctx, lessonID, studentID)
	if err != nil {
		return domain.QuizAttempt{}, false, err
	}
	if detail.Attempt == nil {
		return domain.QuizAttempt{}, false, nil
	}
	return *detail.Attempt, true, nil
}

// CreateAttempt submits the answers; the server recomputes the score and its
// record wins on a duplicate, so retried requests stay idempotent.
func (c *Client) CreateAttempt(ctx context.Context, attempt domain.QuizAttempt) (domain.QuizAttempt, error) {
	body := map[string]any{"studentId": attempt.StudentID, "answers": attempt.Answers}
	data, err := doJSON[attemptDTO](ctx, c, http.MethodPost, "/lessons/lesson/"+url.PathEscape(attempt.LessonID)+"/quiz", nil, body)
	if err != nil {
		return domain.QuizAttempt{}, err
	}
	confirmed := data.model()
	if confirmed.LessonID == "" {
		confirmed.LessonID = attempt.LessonID
	}
	if confirmed.StudentID == "" {
		confirmed.StudentID = attempt.StudentID
	}
	return confirmed, nil
}

// FindSubmission has no read endpoint of its own; the API enforces the
// (studentId, taskId) uniqueness on create and answers with the existing
// record, so the client reports "none" and lets the server arbitrate.
func (c *Client) FindSubmission(ctx context.Context, studentID, taskID string) (domain.TaskSubmission, bool, error) {
	return domain.TaskSubmission{}, false, nil
}

func (c *Client) CreateSubmission(ctx context.Context, sub domain.TaskSubmission) (domain.TaskSubmission, error) {
	body := map[string]string{"studentId": sub.StudentID, "content": sub.Content}
	data, err := doJSON[submissionDTO](ctx, c, http.MethodPost, "/lessons/tasks/submission/"+url.PathEscape(sub.TaskID), nil, body)
	if err != nil {
		return domain.TaskSubmission{}, err
	}
	confirmed := data.model()
	if confirmed.TaskID == "" {
		confirmed.TaskID = sub.TaskID
	}
	if confirmed.StudentID == "" {
		confirmed.StudentID = sub.StudentID
	}
	if confirmed.Content == "" {
		confirmed.Content = sub.Content
	}
	return confirmed, nil
}

// SetMark persists a grade. The updated record is returned only after the
// server confirms; callers must not apply the mark locally before that.
func (c *Client) SetMark(ctx context.Context, submissionID string, mark int) (domain.TaskSubmission, error) {
	data, err := doJSON[submissionDTO](ctx, c, http.MethodPut, "/lessons/submissions/"+url.PathEscape(submissionID)+"/mark", nil, map[string]int{"mark": mark})
	if err != nil {
		return domain.TaskSubmission{}, err
	}
	confirmed := data.model()
	if confirmed.ID == "" {
		confirmed.ID = submissionID
	}
	if confirmed.Mark == nil {
		confirmed.Mark = &mark
	}
	return confirmed, nil
}

// --- dashboards ------------------------------------------------------------

func (c *Client) StudentStats(ctx context.Context, studentID string) (domain.StudentStats, error) {
	data, err := doJSON[domain.StudentStats](ctx, c, http.MethodGet, "/lessons/students/"+url.PathEscape(studentID)+"/dashboard-stats", nil, nil)
	if err != nil {
		return domain.StudentStats{}, err
	}
	return data, nil
}

func (c *Client) TeacherStats(ctx context.Context, teacherID string) (domain.TeacherStats, error) {
	data, err := doJSON[domain.TeacherStats](ctx, c, http.MethodGet, "/lessons/teachers/"+url.PathEscape(teacherID)+"/dashboard-stats", nil, nil)
	if err != nil {
		return domain.TeacherStats{}, err
	}
	return data, nil
}

func (c *Client) EngagementFor(ctx context.Context, lessonID string) ([]domain.EngagementRecord, error) {
	data, err := doJSON[[]domain.EngagementRecord](ctx, c, http.MethodGet, "/lessons/lesson/"+url.PathEscape(lessonID)+"/engagement", nil, nil)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) TaskSubmissionsFor(ctx context.Context, lessonID string) ([]domain.TaskSubmission, error) {
	data, err := doJSON[[]submissionDTO](ctx, c, http.MethodGet, "/lessons/lesson/"+url.PathEscape(lessonID)+"/task-submissions", nil, nil)
	if err != nil {
		return nil, err
	}
	subs := make([]domain.TaskSubmission, 0, len(data))
	for _, dto := range data {
		subs = append(subs, dto.model())
	}
	return subs, nil
}

// --- plumbing --------------------------------------------------------------

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// send executes the request and decodes the body into out, translating HTTP
// status codes into the domain error taxonomy.
func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return req.Context().Err()
		}
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", domain.ErrTransport, err)
	}

	if resp.StatusCode >= 400 {
		return statusError(resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", domain.ErrTransport, req.Method, req.URL.Path, err)
	}
	return nil
}

// doJSON runs a request and unwraps the standard envelope.
func doJSON[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any) (T, error) {
	var zero T
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return zero, err
	}

	var env envelope[T]
	if err := c.send(req, &env); err != nil {
		return zero, err
	}
	if env.Data == nil {
		return zero, fmt.Errorf("%w: %s %s reply without data", domain.ErrTransport, method, path)
	}
	return *env.Data, nil
}

func statusError(code int, raw []byte) error {
	var env envelope[json.RawMessage]
	message := ""
	if json.Unmarshal(raw, &env) == nil {
		message = env.Message
	}
	if message == "" {
		message = http.StatusText(code)
	}

	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrAuthentication, message)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, message)
	case code == http.StatusBadRequest || code == http.StatusConflict || code == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", domain.ErrValidation, message)
	default:
		return fmt.Errorf("%w: status %d: %s", domain.ErrTransport, code, message)
	}
}

// parseWhen accepts the two timestamp shapes the API uses, full RFC 3339 and
// bare dates; anything else becomes the zero time.
func parseWhen(raw string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}
