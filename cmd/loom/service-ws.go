/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/loomery/loom/tools"

	"github.com/gorilla/websocket"
)

// WebSocketService serves the command protocol at /api/commands, a
// firehose of emitted records at /api/emitted, and an HTML rendering
// of the configured format at /api/format.
func (s *Service) WebSocketService(ctx context.Context, addr string, ctl chan bool) error {
	log.Printf("Service.WebSocketService listening on %s", addr)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.webSocketMux(ctx, ctl),
	}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	return nil
}

// firehoseConn is one /api/emitted subscriber.
//
// The forwarder sends on in, which is never closed: a departing
// subscriber closes done and removes itself from the conns map, and a
// send that races that removal just lands in the buffer (or is
// dropped) harmlessly.
type firehoseConn struct {
	in   chan []byte
	done chan bool
}

func (s *Service) webSocketMux(ctx context.Context, ctl chan bool) *http.ServeMux {

	var upgrader = websocket.Upgrader{} // use default options

	conns := sync.Map{}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case x := <-s.Emitted:
				js, err := json.Marshal(&x)
				if err != nil {
					log.Printf("s.firehose Marshal error %v on %#v", err, x)
					continue
				}
				conns.Range(func(k, v interface{}) bool {
					c := v.(*firehoseConn)
					select {
					case c.in <- js:
					default:
						log.Printf("%v firehose blocked", k)
					}
					return true
				})
			}
		}
	}()

	emitted := func(w http.ResponseWriter, r *http.Request) {
		log.Printf("Service.WebSocketService firehose connection")

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error", err)
			return
		}
		defer c.Close()

		fc := &firehoseConn{
			in:   make(chan []byte, 32),
			done: make(chan bool),
		}

		id := r.RemoteAddr
		conns.Store(id, fc)
		defer conns.Delete(id)

		go func() {
			// Drain (and discard) anything the client says so
			// we notice when it goes away.
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					close(fc.done)
					return
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case <-fc.done:
				return
			case js := <-fc.in:
				if err = c.WriteMessage(websocket.TextMessage, js); err != nil {
					log.Println("s.firehose write:", err)
					return
				}
			}
		}
	}

	commands := func(w http.ResponseWriter, r *http.Request) {
		log.Printf("Service.WebSocketService command connection")

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error", err)
			return
		}
		defer c.Close()

		// Bridge message-oriented WebSockets to the line-oriented
		// Listener.
		pr, pw := io.Pipe()
		defer pw.Close()

		go func() {
			for {
				_, message, err := c.ReadMessage()
				if err != nil {
					pw.CloseWithError(io.EOF)
					return
				}
				if _, err = pw.Write(append(message, '\n')); err != nil {
					return
				}
			}
		}()

		if err := s.Listener(ctx, bufio.NewReader(pr), &wsWriter{c: c}, ctl); err != nil {
			log.Printf("Service.Listener error %s", err)
		}
	}

	formatPage := func(w http.ResponseWriter, r *http.Request) {
		root := s.Merger.Format()
		if root == nil {
			http.Error(w, "not configured", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tools.RenderFormatPage(root, "", w, nil); err != nil {
			log.Printf("Service.WebSocketService format render error %s", err)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/commands", commands)
	mux.HandleFunc("/api/emitted", emitted)
	mux.HandleFunc("/api/format", formatPage)

	return mux
}

type wsWriter struct {
	sync.Mutex
	c *websocket.Conn
}

func (w *wsWriter) Write(p []byte) (int, error) {
	w.Lock()
	defer w.Unlock()
	if err := w.c.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}
