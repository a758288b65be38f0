package echoapi

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"strconv"

	"github.com/labstack/echo/v4"
)

// resolveRecordID resolves the target record id the way the frontend sends it:
// path param first, then the `?id=` query param, then the request body.
// Returns 0 when no id was supplied anywhere.
func resolveRecordID(ctx echo.Context) int {
	if raw := ctx.Param("id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			return id
		}
	}
	if raw := ctx.QueryParam("id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			return id
		}
	}
	return peekBodyID(ctx)
}

// peekBodyID extracts an `id` key from the JSON body without consuming it;
// the body is restored so a later Bind still works.
func peekBodyID(ctx echo.Context) int {
	req := ctx.Request()
	if req.Body == nil {
		return 0
	}
	raw, err := ioutil.ReadAll(req.Body)
	if err != nil {
		return 0
	}
	req.Body = ioutil.NopCloser(bytes.NewReader(raw))

	var body struct {
		ID json.Number `json:"id"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return 0
	}
	id, err := strconv.Atoi(body.ID.String())
	if err != nil {
		return 0
	}
	return id
}
