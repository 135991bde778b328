package main

import "predictord/internal/predictctl"

func main() { predictctl.Main() }
