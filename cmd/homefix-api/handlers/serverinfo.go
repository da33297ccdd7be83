package handlers

import (
	"fmt"
	"net"
	"net/http"
)

// ServerInfoResponse tells mobile clients where to reach the server.
type ServerInfoResponse struct {
	IP      string `json:"ip"`
	Port    int    `json:"port"`
	BaseURL string `json:"base_url"`
}

// ServerInfoHandler handles GET /server-info/.
type ServerInfoHandler struct {
	port    int
	localIP func() string
}

// NewServerInfoHandler creates a server info handler.
func NewServerInfoHandler(port int) *ServerInfoHandler {
	return &ServerInfoHandler{port: port, localIP: LocalIP}
}

// Get handles GET /server-info/.
func (h *ServerInfoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ip := h.localIP()
	writeJSON(w, http.StatusOK, ServerInfoResponse{
		IP:      ip,
		Port:    h.port,
		BaseURL: fmt.Sprintf("http://%s:%d", ip, h.port),
	})
}

// LocalIP returns the address of the interface that routes to the internet.
// Dialing UDP sends no packets; it only selects a route.
func LocalIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil {
		return "127.0.0.1"
	}
	return addr.IP.String()
}
