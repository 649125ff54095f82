// Package hcl_adapter loads graph definitions written in HCL:
//
//	node "const" "five" {
//	  type  = number
//	  value = 5
//	}
//
//	node "double" "d" {
//	  inputs = { a = node.five.value }
//	}
//
//	compile "main" {
//	  outputs = [node.d.result]
//	}
//
// Every attribute of a node block other than type and inputs is a
// parameter of the node kind.
package hcl_adapter
