/*
Package builder turns a graph definition model (package config) into a
*graph.Graph and the signatures of the functions to compile from it.

The construction is a multi-phase process:

 1. Node Creation: node declarations are visited in dependency order, so
    that every node kind sees the types of the outputs linked into it
    (registry.NodeConfig.InputTypes). A dependency cycle among declarations
    stops this phase with a *graph.CycleError.

 2. Linking: every input reference becomes a graph link. Links are checked
    for existence, direction and type.

 3. Signatures: the sockets named by every compile declaration are resolved.
    Function inputs prefer input sockets, function outputs prefer output
    sockets, since a node may use one name on both sides.

 4. Validation: the whole graph is checked for cycles.
*/
package builder
