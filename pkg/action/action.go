// Copyright 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package action

import (
	"github.com/matrixorigin/refmap/pkg/common/moerr"
	"github.com/matrixorigin/refmap/pkg/logutil"
)

// Action is a reference counted holder of one action identifier. It
// follows the same single threaded ownership model as refmap.Map.
type Action struct {
	refCnt int
	id     string
}

// New creates an action with no identifier and a reference count of 1.
func New() *Action {
	return &Action{refCnt: 1}
}

// Ref increases the reference count and returns the action.
func (a *Action) Ref() *Action {
	if a == nil {
		return a
	}
	a.refCnt++
	return a
}

// Unref decreases the reference count, clearing the identifier when it
// reaches zero.
func (a *Action) Unref() {
	if a == nil {
		return
	}
	a.refCnt--
	if a.refCnt > 0 {
		return
	}
	a.id = ""
}

// SetID validates and stores the identifier, replacing any prior one.
func (a *Action) SetID(id string) error {
	if a == nil {
		return moerr.NewInvalidState("set id on nil action")
	}
	if err := ValidateID(id); err != nil {
		return err
	}
	a.id = id
	return nil
}

// ID returns the identifier and true, or the empty string and false when
// no identifier has been set.
func (a *Action) ID() (string, bool) {
	if a == nil || a.id == "" {
		return "", false
	}
	return a.id, true
}

// Debug logs the action state at debug level.
func (a *Action) Debug() {
	if a == nil {
		return
	}
	logutil.Debugf("action: refcount=%d id=%s", a.refCnt, a.id)
}

// ValidateID checks an action identifier: two or more dot separated,
// non-empty segments of lowercase letters, digits and dashes, e.g.
// org.example.mount-device.
func ValidateID(id string) error {
	if id == "" {
		return moerr.NewInvalidInput("empty action id")
	}
	segments := 1
	segmentLen := 0
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c == '.':
			if segmentLen == 0 {
				return moerr.NewInvalidInput("action id %s has an empty segment", id)
			}
			segments++
			segmentLen = 0
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-':
			segmentLen++
		default:
			return moerr.NewInvalidInput("action id %s has an invalid character %q", id, c)
		}
	}
	if segmentLen == 0 {
		return moerr.NewInvalidInput("action id %s has an empty segment", id)
	}
	if segments < 2 {
		return moerr.NewInvalidInput("action id %s needs at least two segments", id)
	}
	return nil
}
