/*
Package ports defines the driven ports (interfaces) for the usher controller.

These interfaces decouple the core logic from external implementations,
allowing the controller to work with various opening mechanisms, schedulers,
and journal backends.

# Key Interfaces

  - Opener: the host capability that checks support for and performs the open.
  - Scheduler: time and asynchronous execution, swappable for a virtual-time
    implementation in tests.
  - OutcomeJournal: persistence of classified outcomes (Memory, Redis, SQLite).
  - Gate: optional cross-instance single-flight control for open attempts.
  - OpenService: the application surface consumed by the HTTP and MCP adapters.
*/
package ports
