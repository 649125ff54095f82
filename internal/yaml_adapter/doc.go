// Package yaml_adapter loads graph definitions written in YAML:
//
//	nodes:
//	  - kind: const
//	    name: five
//	    type: number
//	    params:
//	      value: 5
//	  - kind: double
//	    name: d
//	    inputs:
//	      a: five.value
//	compile:
//	  - name: main
//	    outputs: [d.result]
//
// Types use the same syntax as in HCL files. Params are converted with the
// cty YAML decoder, so they carry the same values an HCL file would.
package yaml_adapter
