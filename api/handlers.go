package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"resident-portal/domain"
	"resident-portal/schedule"
	"resident-portal/storage"
)

// TokenIssuer mints portal tokens for the login stub.
type TokenIssuer interface {
	IssueToken(userID, name string, role domain.Role, ttl time.Duration) (string, error)
}

// Deps carries everything the handlers need. Stores are injected so tests
// can run against isolated instances.
type Deps struct {
	Store     *schedule.Store
	Calendars *schedule.CalendarSet
	Residents []domain.Resident
	Profiles  ProfileStore
	Feed      *storage.FeedStore
	Requests  *storage.RequestStore
	Auth      Authenticator
	Tokens    TokenIssuer
	Deduper   Deduper
	Logger    *log.Logger
	Location  *time.Location
	Now       func() time.Time
}

const tokenTTL = 12 * time.Hour

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, d Deps) {
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Calendars == nil {
		d.Calendars = schedule.NewCalendarSet(d.Store)
	}

	e.POST("/api/login", login(d))
	e.GET("/api/residents", getResidents(d))
	e.GET("/api/residents/:id/profile", getProfile(d))
	e.PUT("/api/residents/:id/profile", putProfile(d), GzipRequestMiddleware(requestBodyMaxSize))
	e.GET("/api/residents/:id/feed", getFeed(d))
	e.POST("/api/residents/:id/feed/:postID/likes", postLike(d))
	e.POST("/api/residents/:id/feed/:postID/comments", postComment(d))
	e.GET("/api/residents/:id/requests", getRequests(d))
	e.POST("/api/residents/:id/requests", postRequest(d))
	e.POST("/api/residents/:id/requests/:requestID/complete", completeRequest(d))
	e.GET("/api/residents/:id/schedule", getSchedule(d))
	e.GET("/api/residents/:id/schedule/navigate", navigateSchedule(d))
	e.POST("/api/residents/:id/schedule/events", createEvent(d))
	e.GET("/api/residents/:id/schedule.ics", exportSchedule(d))
	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func identify(c echo.Context, d Deps) (Identity, error) {
	return d.Auth.IdentityFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
}

type loginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// login is a stub: it validates nothing beyond the role value and hands out
// a signed token. There is no identity provider behind the portal.
func login(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req loginRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		role, err := domain.ParseRole(req.Role)
		if err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		name := req.Name
		if name == "" {
			name = "Guest"
		}
		token, err := d.Tokens.IssueToken(uuid.NewString(), name, role, tokenTTL)
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, "login unavailable")
		}
		return c.JSON(http.StatusOK, loginResponse{Token: token, Role: string(role)})
	}
}

type residentEntry struct {
	domain.Resident
	OpenRequests int `json:"openRequests"`
}

func getResidents(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := identify(c, d); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		out := make([]residentEntry, 0, len(d.Residents))
		for _, r := range d.Residents {
			out = append(out, residentEntry{Resident: r, OpenRequests: d.Requests.OpenCount(r.ID)})
		}
		return c.JSON(http.StatusOK, out)
	}
}

func getProfile(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := identify(c, d); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		prof, err := d.Profiles.Fetch(c.Request().Context(), c.Param("id"))
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, prof)
	}
}

type profileUpdate struct {
	Photo       *string   `json:"photo"`
	Interests   *[]string `json:"interests"`
	Medications *[]string `json:"medications"`
}

func putProfile(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := identify(c, d)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var upd profileUpdate
		if err := decodeBody(c, &upd); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if upd.Medications != nil && !id.Role.CanEditMedications() {
			return c.String(http.StatusForbidden, "medications can only be edited by staff or family")
		}

		ctx := c.Request().Context()
		residentID := c.Param("id")
		prof, err := d.Profiles.Fetch(ctx, residentID)
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
		if upd.Photo != nil {
			prof.Photo = *upd.Photo
		}
		if upd.Interests != nil {
			prof.Interests = *upd.Interests
		}
		if upd.Medications != nil {
			prof.Medications = *upd.Medications
		}
		if err := d.Profiles.Save(ctx, residentID, prof); err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, prof)
	}
}

func getFeed(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := identify(c, d); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		community := c.QueryParam("scope") != "personal"
		posts := d.Feed.Posts(c.Param("id"), community)
		return c.JSON(http.StatusOK, posts)
	}
}

type likeResponse struct {
	Likes int  `json:"likes"`
	Liked bool `json:"liked"`
}

// postLike toggles the caller's like: liking an already-liked post takes the
// like back.
func postLike(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := identify(c, d)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		likes, liked, err := d.Feed.Like(c.Param("postID"), id.UserID)
		if err != nil {
			return c.String(http.StatusNotFound, err.Error())
		}
		return c.JSON(http.StatusOK, likeResponse{Likes: likes, Liked: liked})
	}
}

type commentRequest struct {
	Text string `json:"text"`
}

func postComment(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := identify(c, d)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var req commentRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if req.Text == "" {
			return c.String(http.StatusBadRequest, "comment text is required")
		}
		comment := domain.Comment{
			ID:        uuid.NewString(),
			Author:    id.Name,
			Text:      req.Text,
			Timestamp: d.Now().UnixMilli(),
		}
		if err := d.Feed.AddComment(c.Param("postID"), comment); err != nil {
			return c.String(http.StatusNotFound, err.Error())
		}
		return c.JSON(http.StatusCreated, comment)
	}
}

func getRequests(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := identify(c, d); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		return c.JSON(http.StatusOK, d.Requests.List(c.Param("id")))
	}
}

type newRequest struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func postRequest(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := identify(c, d); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var req newRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if req.Text == "" {
			return c.String(http.StatusBadRequest, "request text is required")
		}
		reqType := domain.RequestType(req.Type)
		if reqType != domain.RequestItem && reqType != domain.RequestService {
			return c.String(http.StatusBadRequest, "request type must be Item or Service")
		}
		record := domain.Request{
			ID:        uuid.NewString(),
			Type:      reqType,
			Text:      req.Text,
			Timestamp: d.Now().UnixMilli(),
		}
		d.Requests.Add(c.Param("id"), record)
		return c.JSON(http.StatusCreated, record)
	}
}

func completeRequest(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := identify(c, d); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		if err := d.Requests.Complete(c.Param("id"), c.Param("requestID")); err != nil {
			return c.String(http.StatusConflict, err.Error())
		}
		return c.NoContent(http.StatusNoContent)
	}
}

type dayBucket struct {
	Date    string         `json:"date"`
	InMonth bool           `json:"inMonth"`
	Events  []domain.Event `json:"events"`
}

type hourBucket struct {
	Hour   int            `json:"hour"`
	Events []domain.Event `json:"events"`
}

type scheduleResponse struct {
	View   string       `json:"view"`
	Date   string       `json:"date"`
	Header string       `json:"header"`
	Days   []dayBucket  `json:"days,omitempty"`
	Hours  []hourBucket `json:"hours,omitempty"`
}

func getSchedule(d Deps) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newScheduleRequestMetrics(ctx, d.Logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authStart := time.Now()
		_, authErr := identify(c, d)
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = c.String(http.StatusUnauthorized, authErr.Error())
			return err
		}

		view, ref, parseErr := viewParams(c, d)
		if parseErr != nil {
			metrics.SetErrorStage("params")
			err = c.String(http.StatusBadRequest, parseErr.Error())
			return err
		}
		metrics.SetView(string(view))

		bucketStart := time.Now()
		events := d.Calendars.Get(c.Param("id")).Events()
		resp := scheduleResponse{
			View:   string(view),
			Date:   ref.Format("2006-01-02"),
			Header: schedule.HeaderLabel(ref, view),
		}
		total := 0
		if view == schedule.GranularityDay {
			day := schedule.Window(ref, view)[0].Date
			for hour := 0; hour < 24; hour++ {
				evs := schedule.EventsAt(events, day, hour)
				total += len(evs)
				resp.Hours = append(resp.Hours, hourBucket{Hour: hour, Events: evs})
			}
		} else {
			for _, day := range schedule.Window(ref, view) {
				evs := schedule.EventsOn(events, day.Date)
				total += len(evs)
				resp.Days = append(resp.Days, dayBucket{
					Date:    day.Date.Format("2006-01-02"),
					InMonth: day.InMonth,
					Events:  evs,
				})
			}
		}
		metrics.ObserveBucketing(time.Since(bucketStart))
		metrics.SetEventsReturned(total)

		err = c.JSON(http.StatusOK, resp)
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func navigateSchedule(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := identify(c, d); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		view, ref, err := viewParams(c, d)
		if err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		var next time.Time
		switch c.QueryParam("dir") {
		case "previous":
			next = schedule.Previous(ref, view)
		case "next":
			next = schedule.Next(ref, view)
		default:
			return c.String(http.StatusBadRequest, "dir must be previous or next")
		}
		return c.JSON(http.StatusOK, map[string]string{
			"date":   next.Format("2006-01-02"),
			"header": schedule.HeaderLabel(next, view),
		})
	}
}

type createEventRequest struct {
	Category       string `json:"category"`
	Date           string `json:"date"`
	Hour           *int   `json:"hour"`
	Title          string `json:"title"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	IdempotencyKey string `json:"idempotencyKey"`
}

// createEvent runs the full drag-to-create interaction server side: guard,
// drop anchor, validate, append. Either the fully valid event lands in its
// store or nothing changes.
func createEvent(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := identify(c, d)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var req createEventRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		cat, err := domain.ParseCategory(req.Category)
		if err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		anchor, err := time.ParseInLocation("2006-01-02", req.Date, d.Location)
		if err != nil {
			return c.String(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		hour := schedule.NoHour
		if req.Hour != nil {
			hour = *req.Hour
		}

		residentID := c.Param("id")
		ctx := c.Request().Context()
		if req.IdempotencyKey != "" {
			added, err := d.Deduper.Add(ctx, residentID, req.IdempotencyKey)
			if err != nil {
				c.Logger().Error(err)
				return c.String(http.StatusInternalServerError, "deduplication unavailable")
			}
			if !added {
				return c.JSON(http.StatusOK, map[string]bool{"duplicate": true})
			}
		}

		flow := schedule.NewCreationFlow(d.Store, residentID, id.Role)
		ev, flowErr := runCreation(flow, cat, anchor, hour, req)
		if flowErr != nil {
			if req.IdempotencyKey != "" {
				if remErr := d.Deduper.Remove(ctx, residentID, req.IdempotencyKey); remErr != nil {
					c.Logger().Error(remErr)
				}
			}
			if errors.Is(flowErr, domain.ErrAppointmentNotAllowed) {
				return c.String(http.StatusForbidden, flowErr.Error())
			}
			if domain.IsValidation(flowErr) {
				return c.String(http.StatusBadRequest, flowErr.Error())
			}
			c.Logger().Error(flowErr)
			return c.String(http.StatusInternalServerError, flowErr.Error())
		}
		return c.JSON(http.StatusCreated, ev)
	}
}

func runCreation(flow *schedule.CreationFlow, cat domain.Category, anchor time.Time, hour int, req createEventRequest) (domain.Event, error) {
	if err := flow.StartDrag(cat); err != nil {
		return domain.Event{}, err
	}
	if err := flow.Drop(anchor, hour); err != nil {
		return domain.Event{}, err
	}
	return flow.Submit(req.Title, req.StartTime, req.EndTime)
}

func viewParams(c echo.Context, d Deps) (schedule.Granularity, time.Time, error) {
	view := schedule.GranularityWeek
	if v := c.QueryParam("view"); v != "" {
		parsed, err := schedule.ParseGranularity(v)
		if err != nil {
			return "", time.Time{}, err
		}
		view = parsed
	}
	ref := d.Now().In(d.Location)
	if v := c.QueryParam("date"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, d.Location)
		if err != nil {
			return "", time.Time{}, errors.New("date must be YYYY-MM-DD")
		}
		ref = parsed
	}
	return view, ref, nil
}

func decodeBody(c echo.Context, v any) error {
	lr := io.LimitReader(c.Request().Body, requestBodyMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
