/*
 * SPDX-FileCopyrightText: © Hypermode Inc. <hello@hypermode.com>
 * SPDX-License-Identifier: Apache-2.0
 */

package x

import (
	"encoding/json"
	"net/http"

	"github.com/golang/glog"
)

// AddCorsHeaders adds the CORS related headers to the response.
func AddCorsHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers",
		"Content-Type, Content-Length, Accept-Encoding, Content-Encoding, "+
			"X-Request-Id, Authorization")
	w.Header().Set("Access-Control-Allow-Credentials", "true")
}

// HealthInfo is the body of the /health response.
type HealthInfo struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  int64  `json:"uptime"`
}

// Health returns the health of this process.
func Health() HealthInfo {
	return HealthInfo{
		Status:  "healthy",
		Version: Version(),
		Uptime:  int64(Uptime().Seconds()),
	}
}

// Reply writes rep as JSON with the given status code.
func Reply(w http.ResponseWriter, code int, rep interface{}) {
	js, err := json.Marshal(rep)
	if err != nil {
		glog.Errorf("Unable to marshal %+v: %v", rep, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(js); err != nil {
		glog.Warningf("Error while writing reply: %v", err)
	}
}
