package handler

import (
	"net/http"
	"strconv"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/repository"
)

// pageRequestFromQuery reads page/page_size, leaving zero values for the
// repository layer to normalize.
func pageRequestFromQuery(r *http.Request) repository.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	return repository.PageRequest{Page: page, PageSize: pageSize}
}

func uintQuery(r *http.Request, name string) uint {
	v, err := strconv.ParseUint(r.URL.Query().Get(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}
