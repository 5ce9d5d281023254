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
	"log"
	"net"
)

// TCPService accepts connections and runs a command Listener on each.
//
// A "shutdown" command on any connection sends true on ctl.
func (s *Service) TCPService(ctx context.Context, port string, ctl chan bool) error {
	log.Printf("Service listening on %s", port)

	l, err := net.Listen("tcp", port)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		l.Close()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}
		go func(c net.Conn) {
			defer c.Close()
			if err := s.Listener(ctx, bufio.NewReader(c), c, ctl); err != nil {
				log.Printf("Service.Listener error %s", err)
			}
		}(conn)
	}
}
