package usher

// Version is the current release of the Usher library.
const Version = "0.3.1"
