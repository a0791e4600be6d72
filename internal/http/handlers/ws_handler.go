package handlers

import "github.com/gin-gonic/gin"

// ChatWS godoc
// @ID          chatWS
// @Summary     Realtime chat channel
// @Description Upgrades to a WebSocket. Clients send {"event":"send_message","data":{author,message,time?}}
// @Description and every connection, the sender included, receives {"event":"receive_message","data":{author,message,time}}.
// @Tags        Chat
// @Success     101  "Switching Protocols"
// @Failure     503  "Shutting down"
// @Router      /ws [get]
func (h *Handlers) ChatWS(c *gin.Context) {
	h.socket.ServeWS(c.Writer, c.Request)
}
