/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package scene

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/simpletrackers/go-tracker/pkg/log"
)

const (
	socketBufferSize  = 1024
	messageBufferSize = 10
)

var upgrader = &websocket.Upgrader{
	ReadBufferSize:  socketBufferSize,
	WriteBufferSize: socketBufferSize,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Room fans published messages out to websocket clients. A slow client
// loses messages instead of stalling the publisher.
type Room struct {
	forward chan []byte
	join    chan *client
	leave   chan *client
	clients map[*client]bool
	done    chan struct{}
}

func NewRoom() *Room {
	return &Room{
		forward: make(chan []byte, messageBufferSize),
		join:    make(chan *client),
		leave:   make(chan *client),
		clients: make(map[*client]bool),
		done:    make(chan struct{}),
	}
}

// Run serves joins, leaves and broadcasts until ctx is done
func (r *Room) Run(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			for c := range r.clients {
				delete(r.clients, c)
				close(c.send)
			}
			return
		case c := <-r.join:
			r.clients[c] = true
			log.Info("Renderer joined from %s", c.socket.RemoteAddr())
		case c := <-r.leave:
			if r.clients[c] {
				delete(r.clients, c)
				close(c.send)
				log.Info("Renderer left from %s", c.socket.RemoteAddr())
			}
		case msg := <-r.forward:
			for c := range r.clients {
				select {
				case c.send <- msg:
				default:
					log.Debug("Dropping message for slow renderer %s", c.socket.RemoteAddr())
				}
			}
		}
	}
}

// Broadcast never blocks
func (r *Room) Broadcast(msg []byte) {
	select {
	case r.forward <- msg:
	default:
		log.Debug("Room busy, dropping message")
	}
}

func (r *Room) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	socket, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Error("Error while upgrading renderer connection: %s", err)
		return
	}
	c := &client{
		socket: socket,
		send:   make(chan []byte, messageBufferSize),
	}
	select {
	case r.join <- c:
	case <-r.done:
		socket.Close()
		return
	}
	go c.write()
	c.read()
	select {
	case r.leave <- c:
	case <-r.done:
	}
}

type client struct {
	socket *websocket.Conn
	send   chan []byte
}

// read discards incoming messages and returns when the peer goes away
func (c *client) read() {
	defer c.socket.Close()
	for {
		if _, _, err := c.socket.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) write() {
	defer c.socket.Close()
	for msg := range c.send {
		if err := c.socket.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
