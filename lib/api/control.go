package api

import (
	"fmt"
	"log/slog"
	"net/http"
)

// @Summary	Close the window and exit
// @Router		/api/kill [post]
// @Tags		control
// @Success	200
// @Failure	405	{string}	string	"Only POST is supported"
func (a *Api) suicide(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "Invalid method, only POST supported", http.StatusMethodNotAllowed)
		return
	}
	a.log("shutting down as per api request")
	a.loop.RequestClose()
	a.ok(w)
}

// @Summary	Reload the shader sources and rebuild the program
// @Router		/api/reload [post]
// @Tags		control
// @Success	200
// @Failure	405	{string}	string	"Only POST is supported"
func (a *Api) reload(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "Invalid method, only POST supported", http.StatusMethodNotAllowed)
		return
	}
	a.log("reloading shaders as per api request")
	a.loop.RequestReload()
	a.ok(w)
}

func (a *Api) ok(w http.ResponseWriter) {
	_, err := fmt.Fprintf(w, "\"ok\"\n")
	if err != nil {
		slog.Error(fmt.Sprintf("could not write response: %s", err), slog.String("module", "api"))
		return
	}
}
