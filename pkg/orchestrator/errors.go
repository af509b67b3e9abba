/*
Copyright The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package orchestrator

import (
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// BindErrorKind classifies a failed Bind call the way spec.md §4.1
// requires: conflict, forbidden, or transient.
type BindErrorKind string

const (
	BindErrorConflict  BindErrorKind = "conflict"
	BindErrorForbidden BindErrorKind = "forbidden"
	BindErrorTransient BindErrorKind = "transient"
)

// BindError wraps a failed binding attempt with its classification.
type BindError struct {
	Kind BindErrorKind
	Pod  string
	Node string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s -> %s: %s: %v", e.Pod, e.Node, e.Kind, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// classifyBindError maps an apimachinery error returned by the Bind
// subresource call into a BindErrorKind. Anything that isn't clearly a
// conflict or a permissions failure is treated as transient, per
// spec.md §4.1 ("transient otherwise").
func classifyBindError(podRef, node string, err error) *BindError {
	kind := BindErrorTransient
	switch {
	case apierrors.IsConflict(err), apierrors.IsAlreadyExists(err):
		kind = BindErrorConflict
	case apierrors.IsForbidden(err), apierrors.IsUnauthorized(err):
		kind = BindErrorForbidden
	}
	return &BindError{Kind: kind, Pod: podRef, Node: node, Err: err}
}
