package internal

// Version is the wordhoard release version
const Version = "0.1.0"
