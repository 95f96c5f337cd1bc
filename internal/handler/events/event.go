package events

import (
	"errors"
	"net/http"
	"strconv"

	"events-api/internal/api"
	"events-api/internal/database"
	"events-api/internal/model"
	"events-api/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

var (
	getEventByID      = store.GetEventByID
	listEvents        = store.ListEvents
	createEvent       = store.CreateEvent
	updateEventFields = store.UpdateEventFields
	deleteEvent       = store.DeleteEvent
	countEvents       = store.CountEvents
)

// updatableEventFields 更新端點允許覆寫的欄位
var updatableEventFields = map[string]bool{
	"name":        true,
	"description": true,
	"start_date":  true,
	"end_date":    true,
}

// ListEventsHandler 依過濾條件列出事件
// @Summary     List events
// @Description 依可選的過濾條件回傳事件列表，created_at 由新到舊
// @Tags        event
// @Accept      json
// @Produce     json
// @Param       body body api.ListEventsRequest false "過濾條件"
// @Success     200 {object} api.Response
// @Failure     400 {object} api.Response
// @Failure     500 {object} api.Response
// @Security    ApiKeyAuth
// @Router      /event [post]
func ListEventsHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.ListEventsRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Failed("invalid request payload"))
		}

		filter := model.EventFilter{Name: req.Name}
		if req.StartDate != "" {
			t, err := api.ParseDate(req.StartDate)
			if err != nil {
				return c.JSON(http.StatusBadRequest, api.Failed("invalid start_date, expected DD-MM-YYYY"))
			}
			filter.StartDate = t
		}
		if req.EndDate != "" {
			t, err := api.ParseDate(req.EndDate)
			if err != nil {
				return c.JSON(http.StatusBadRequest, api.Failed("invalid end_date, expected DD-MM-YYYY"))
			}
			filter.EndDate = t
		}

		events, err := listEvents(c.Request().Context(), db, filter)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Failed(err.Error()))
		}
		return c.JSON(http.StatusOK, api.Success(events))
	}
}

// GetEventHandler 以 ID 查詢單一事件
// @Summary     Get event
// @Tags        event
// @Produce     json
// @Param       id path int true "事件 ID"
// @Success     200 {object} api.Response
// @Failure     400 {object} api.Response
// @Failure     404 {object} api.Response
// @Security    ApiKeyAuth
// @Router      /event/{id} [get]
func GetEventHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, api.Failed("invalid event ID"))
		}
		event, err := getEventByID(c.Request().Context(), db, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return c.JSON(http.StatusNotFound, api.Failed("event not found"))
			}
			return c.JSON(http.StatusInternalServerError, api.Failed(err.Error()))
		}
		return c.JSON(http.StatusOK, api.Success(event))
	}
}

// CountEventsHandler 回傳事件總數
// @Summary     Count events
// @Tags        event
// @Produce     json
// @Success     200 {object} api.Response
// @Failure     500 {object} api.Response
// @Security    ApiKeyAuth
// @Router      /event/count [get]
func CountEventsHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		count, err := countEvents(c.Request().Context(), db)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Failed(err.Error()))
		}
		return c.JSON(http.StatusOK, api.Success(count))
	}
}

// CreateEventHandler 建立事件
// @Summary     Create event
// @Description 建立新事件，日期使用 DD-MM-YYYY 格式
// @Tags        event
// @Accept      json
// @Produce     json
// @Param       body body api.CreateEventRequest true "事件資料"
// @Success     200 {object} api.Response
// @Failure     400 {object} api.Response
// @Failure     500 {object} api.Response
// @Security    ApiKeyAuth
// @Router      /event/create [post]
func CreateEventHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.CreateEventRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Failed("invalid request payload"))
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Failed(err.Error()))
		}

		start, err := api.ParseDate(req.StartDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, api.Failed("invalid start_date, expected DD-MM-YYYY"))
		}
		end, err := api.ParseDate(req.EndDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, api.Failed("invalid end_date, expected DD-MM-YYYY"))
		}

		event, err := createEvent(c.Request().Context(), db, &model.Event{
			Name:        req.Name,
			Description: req.Description,
			StartDate:   start,
			EndDate:     end,
		})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Failed(err.Error()))
		}
		return c.JSON(http.StatusOK, api.Success(event))
	}
}

// buildEventUpdate 檢查允許清單並解析日期欄位
func buildEventUpdate(update map[string]any) (map[string]any, error) {
	if len(update) == 0 {
		return nil, errors.New("update object is empty")
	}
	fields := make(map[string]any, len(update))
	for name, value := range update {
		if !updatableEventFields[name] {
			return nil, errors.New("field " + name + " is not updatable")
		}
		s, ok := value.(string)
		if !ok {
			return nil, errors.New("field " + name + " must be a string")
		}
		switch name {
		case "start_date", "end_date":
			t, err := api.ParseDate(s)
			if err != nil {
				return nil, errors.New("invalid " + name + ", expected DD-MM-YYYY")
			}
			fields[name] = t
		default:
			fields[name] = s
		}
	}
	return fields, nil
}

// UpdateEventHandler 更新事件（允許清單內的欄位）
// @Summary     Edit event
// @Tags        event
// @Accept      json
// @Produce     json
// @Param       body body api.UpdateRequest true "更新內容"
// @Success     201 {object} api.Response
// @Failure     400 {object} api.Response
// @Failure     404 {object} api.Response
// @Failure     500 {object} api.Response
// @Security    ApiKeyAuth
// @Router      /event/edit [put]
func UpdateEventHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.UpdateRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Failed("the required parameters were not supplied"))
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Failed(err.Error()))
		}

		fields, err := buildEventUpdate(req.Update)
		if err != nil {
			return c.JSON(http.StatusBadRequest, api.Failed(err.Error()))
		}

		event, err := updateEventFields(c.Request().Context(), db, req.ID, fields)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return c.JSON(http.StatusNotFound, api.Failed("event not found"))
			}
			return c.JSON(http.StatusInternalServerError, api.Failed(err.Error()))
		}
		return c.JSON(http.StatusCreated, api.Success(event))
	}
}

// DeleteEventHandler 刪除事件
// @Summary     Delete event
// @Tags        event
// @Accept      json
// @Produce     json
// @Param       body body api.DeleteRequest true "目標 ID"
// @Success     204 "No Content"
// @Failure     400 {object} api.Response
// @Failure     404 {object} api.Response
// @Failure     500 {object} api.Response
// @Security    ApiKeyAuth
// @Router      /event/delete [post]
func DeleteEventHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.DeleteRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Failed("the required parameters were not supplied"))
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Failed(err.Error()))
		}

		if err := deleteEvent(c.Request().Context(), db, req.ID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return c.JSON(http.StatusNotFound, api.Failed("Event doesn't exist"))
			}
			return c.JSON(http.StatusInternalServerError, api.Failed(err.Error()))
		}
		return c.NoContent(http.StatusNoContent)
	}
}
