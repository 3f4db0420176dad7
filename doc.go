// Package supply and its sub-packages implement a backend service computing the circulating supply of a token.
/*
The circulating supply of a token is its total supply minus the balances held by a configured list of
non-circulating addresses (treasury, team, vesting, burn addresses...). Amounts are exact integers in the token's
base units, however large.

Architecture

The service (package supply) exposes a RESTful API. A recomputation, protected by a bearer token obtained from the
login endpoint, queries the total supply and every non-circulating balance from an Etherscan compatible ledger
provider (package lib/ledger), computes the circulating supply (package lib/circulating) and saves the result as the
single current snapshot. Anybody can then read the last saved snapshot.

The snapshot is kept by a database product agnostic layer (package lib/store): a volatile memory store, MongoDB or
PostgreSQL, selected via the JSON config file provided at startup. Every saved snapshot can also be published to a
message broker (package lib/msg) so other services learn about supply changes in real-time.

Bearer tokens are HS256 JSON Web Tokens (package lib/auth) signed with a secret from the configuration.

The service can be monitored via a Prometheus API by setting the flag "-m" at startup.

Supply

The supply microservice can be started running cmd/supply/main.go with a config file such as cmd/conf.json. Every
setting can be overridden by a CSUP_ environment variable (package lib/config).

*/
package supply
