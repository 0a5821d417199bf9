package http

import (
	"net/http"
	"strconv"

	"rentmate/pkg/config"
	apperrors "rentmate/pkg/errors"
	"rentmate/pkg/model"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractDate reads an optional yyyy-MM-dd query parameter.
func ExtractDate(r *http.Request, name string) (model.Date, bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return model.Date{}, false, nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return model.Date{}, false, apperrors.InvalidInput("invalid " + name + " parameter, expected yyyy-MM-dd: " + s)
	}
	return d, true, nil
}
