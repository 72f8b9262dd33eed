package dev

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/van-dev/van/pkg/middleware"
)

// ReloadMessage is sent to connected browsers over the reload socket.
type ReloadMessage struct {
	Type  string `json:"type"`
	Error string `json:"error,omitempty"`
	File  string `json:"file,omitempty"`
}

// ReloadServer manages hot-reload WebSocket connections.
type ReloadServer struct {
	mu       sync.RWMutex
	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader
}

// NewReloadServer creates a reload hub.
func NewReloadServer() *ReloadServer {
	return &ReloadServer{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			// Dev-only server; any origin may connect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWebSocket upgrades the request and keeps the connection registered
// until the client disconnects.
func (rs *ReloadServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := rs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	rs.mu.Lock()
	rs.clients[conn] = true
	n := len(rs.clients)
	rs.mu.Unlock()
	middleware.SetReloadClients(n)

	defer func() {
		rs.mu.Lock()
		delete(rs.clients, conn)
		n := len(rs.clients)
		rs.mu.Unlock()
		middleware.SetReloadClients(n)
		conn.Close()
	}()

	// Drain client messages; we only push.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// NotifyReload tells clients to reload the full page.
func (rs *ReloadServer) NotifyReload() {
	rs.broadcast(ReloadMessage{Type: "reload"})
}

// NotifyCSS tells clients to hot-swap stylesheets without a full reload.
func (rs *ReloadServer) NotifyCSS(file string) {
	rs.broadcast(ReloadMessage{Type: "css", File: file})
}

// NotifyError shows a build error overlay in connected browsers.
func (rs *ReloadServer) NotifyError(msg string) {
	rs.broadcast(ReloadMessage{Type: "error", Error: msg})
}

// ClearError removes the error overlay.
func (rs *ReloadServer) ClearError() {
	rs.broadcast(ReloadMessage{Type: "clear"})
}

// ClientCount returns the number of connected clients.
func (rs *ReloadServer) ClientCount() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.clients)
}

// Close disconnects all clients.
func (rs *ReloadServer) Close() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	for conn := range rs.clients {
		conn.Close()
		delete(rs.clients, conn)
	}
	middleware.SetReloadClients(0)
}

func (rs *ReloadServer) broadcast(msg ReloadMessage) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	for conn := range rs.clients {
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
		}
	}
}

// DevClientScript is injected into every page served by the dev server. It
// connects back over WebSocket, reloads on change, hot-swaps CSS, and shows
// compile errors in an overlay.
const DevClientScript = `<script>
(function() {
  var retries = 0;
  function connect() {
    var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
    var ws = new WebSocket(proto + location.host + '/__van/ws');
    ws.onopen = function() {
      retries = 0;
      console.log('[Van] connected');
    };
    ws.onmessage = function(ev) {
      var msg = JSON.parse(ev.data);
      if (msg.type === 'reload') {
        location.reload();
      } else if (msg.type === 'css') {
        var links = document.querySelectorAll('link[rel="stylesheet"]');
        links.forEach(function(link) {
          var href = link.href.split('?')[0];
          link.href = href + '?t=' + Date.now();
        });
        console.log('[Van] styles updated');
      } else if (msg.type === 'error') {
        showOverlay(msg.error);
      } else if (msg.type === 'clear') {
        hideOverlay();
      }
    };
    ws.onclose = function() {
      retries++;
      var delay = Math.min(1000 * retries, 5000);
      setTimeout(connect, delay);
    };
  }
  function showOverlay(text) {
    hideOverlay();
    var el = document.createElement('div');
    el.id = 'van-error-overlay';
    el.style.cssText = 'position:fixed;top:0;left:0;right:0;bottom:0;' +
      'background:rgba(20,20,20,0.92);color:#ff8080;z-index:99999;' +
      'padding:2rem;font-family:monospace;font-size:14px;white-space:pre-wrap;overflow:auto;';
    el.textContent = '[Van] compile error\n\n' + text;
    document.body.appendChild(el);
  }
  function hideOverlay() {
    var el = document.getElementById('van-error-overlay');
    if (el) el.remove();
  }
  connect();
})();
</script>`
