package event

const defaultEnabled = true
