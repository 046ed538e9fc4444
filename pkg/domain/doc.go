/*
Package domain contains the core domain models for the usher controller.

It defines the vocabulary of one open cycle: the pending Request held in the
host application's state, the three-kind Outcome produced when the cycle
finishes, the Edge classification of request transitions, and the lifecycle
events observers can subscribe to. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - Request: the tagged pending state (Idle | Pending) of the host field.
  - Outcome: the classified result of one attempt (opened, open_failed,
    unsupported).
  - EdgeKind: how the pending field changed between two committed states.
  - LifecycleHooks: observability callbacks for each stage of a cycle.
*/
package domain
