package workflow

const usageGuide = `WHAT DOES ORION DO?
Orion provisions an edge cache for a GraphQL API. It creates services on
Fastly (CDN) and AWS (logging) that cache GraphQL queries close to users.

SERVICES CREATED
  Fastly  CDN service, Compute service, Config Store, Secret Store
  AWS     IAM role, S3 bucket for access logs, Kinesis stream for events

WHAT YOU NEED
  1. The URL of your GraphQL server, e.g. https://api.example.com:443
  2. AWS access key ID, secret access key and region
  3. A Fastly API token

  Credentials can come from a saved file, from AWS_* and FASTLY_API_KEY
  (or FASTLY_API_TOKEN) environment variables, a .env file, or be typed in.

WHAT YOU GET BACK
  A cache URL of the form https://<service-domain>/graphql. Choose
  "View Current Cache" from the main menu to see every resource created.

TEARING DOWN
  "Destroy existing cache" removes all resources and local state. Saved
  credentials are kept.`
