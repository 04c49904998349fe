package main

import "github.com/steghunt/steghunt/cmd/steghunt"

func main() { steghunt.Execute() }
