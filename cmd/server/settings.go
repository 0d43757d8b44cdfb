package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type appSettings struct {
	SiteName          string  `json:"site_name"`
	AppName           string  `json:"app_name"`
	Tagline           string  `json:"tagline"`
	BusinessName      string  `json:"business_name"`
	OwnerName         string  `json:"owner_name"`
	LowStockThreshold float64 `json:"low_stock_threshold"`
}

func (st *appSettings) validate() error {
	st.SiteName = strings.TrimSpace(st.SiteName)
	st.AppName = strings.TrimSpace(st.AppName)
	st.Tagline = strings.TrimSpace(st.Tagline)
	st.BusinessName = strings.TrimSpace(st.BusinessName)
	st.OwnerName = strings.TrimSpace(st.OwnerName)
	if st.LowStockThreshold < 0 {
		return fmt.Errorf("low_stock_threshold must be greater than or equal to 0")
	}
	return nil
}

func (s *server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	settings, err := s.getSettings()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

func (s *server) handleSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var req appSettings
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.updateSettings(req); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	respondJSON(w, http.StatusOK, req)
}

func (s *server) getSettings() (appSettings, error) {
	var st appSettings
	err := s.db.QueryRow(`
		SELECT site_name, app_name, tagline, business_name, owner_name, low_stock_threshold
		FROM settings
		WHERE id = 1
	`).Scan(
		&st.SiteName,
		&st.AppName,
		&st.Tagline,
		&st.BusinessName,
		&st.OwnerName,
		&st.LowStockThreshold,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appSettings{}, fmt.Errorf("settings singleton not found")
		}
		return appSettings{}, fmt.Errorf("query settings: %w", err)
	}
	return st, nil
}

func (s *server) updateSettings(st appSettings) error {
	_, err := s.db.Exec(`
		UPDATE settings
		SET
			site_name = ?,
			app_name = ?,
			tagline = ?,
			business_name = ?,
			owner_name = ?,
			low_stock_threshold = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`,
		st.SiteName,
		st.AppName,
		st.Tagline,
		st.BusinessName,
		st.OwnerName,
		st.LowStockThreshold,
	)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}

	return nil
}
