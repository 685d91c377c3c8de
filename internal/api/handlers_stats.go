package api

import (
	"errors"
	"net/http"

	"hangar/pkg/db"
)

type statsRow struct {
	Apps   int64 `db:"apps"`
	Admins int64 `db:"admins"`
}

type packageRow struct {
	PackageName string `db:"package_name" json:"package_name"`
	Apps        int64  `db:"apps" json:"apps"`
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	if a.db == nil {
		respondError(w, http.StatusFailedDependency, errors.New("database pool not configured"))
		return
	}

	var row statsRow
	err := db.Get(r.Context(), a.db, &row, `
		SELECT
			(SELECT count(*) FROM apps)   AS apps,
			(SELECT count(*) FROM admins) AS admins
	`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	packages := []packageRow{}
	err = db.Select(r.Context(), a.db, &packages, `
		SELECT package_name, count(*) AS apps
		FROM apps
		GROUP BY package_name
		ORDER BY apps DESC, package_name
	`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"apps":     row.Apps,
		"admins":   row.Admins,
		"packages": packages,
	})
}
